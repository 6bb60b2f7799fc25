package crypto

import (
	"bytes"
	"crypto/ecdh"
	"crypto/rand"
	"fmt"
)

// Curve names a key-agreement curve. Values match the JWK "crv" member.
type Curve string

const (
	P256   Curve = "P-256"
	X25519 Curve = "X25519"
)

// String returns the JWK name of the curve.
func (c Curve) String() string { return string(c) }

// ParseCurve validates a curve name.
func ParseCurve(s string) (Curve, error) {
	switch Curve(s) {
	case P256, X25519:
		return Curve(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedCurve, s)
}

// PublicKey is a key-agreement public key.
//
// Bytes holds the uncompressed SEC1 point for P-256 and the 32-byte
// u-coordinate for X25519.
type PublicKey struct {
	Curve Curve
	Bytes []byte
}

// Equal reports whether k and other are the same key.
func (k PublicKey) Equal(other PublicKey) bool {
	return k.Curve == other.Curve && bytes.Equal(k.Bytes, other.Bytes)
}

// PrivateKey is a key-agreement private scalar.
type PrivateKey struct {
	Curve  Curve
	Scalar []byte
}

// KeyPair is one device's agreement key pair.
type KeyPair struct {
	Public  PublicKey
	Private PrivateKey
}

// GenerateKeyPair returns a fresh key pair on curve c.
func GenerateKeyPair(c Curve) (KeyPair, error) {
	switch c {
	case P256:
		priv, err := ecdh.P256().GenerateKey(rand.Reader)
		if err != nil {
			return KeyPair{}, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
		}
		return KeyPair{
			Public:  PublicKey{Curve: P256, Bytes: priv.PublicKey().Bytes()},
			Private: PrivateKey{Curve: P256, Scalar: priv.Bytes()},
		}, nil
	case X25519:
		priv, pub, err := GenerateX25519()
		if err != nil {
			return KeyPair{}, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
		}
		return KeyPair{
			Public:  PublicKey{Curve: X25519, Bytes: pub[:]},
			Private: PrivateKey{Curve: X25519, Scalar: priv[:]},
		}, nil
	}
	return KeyPair{}, fmt.Errorf("%w: %w: %q", ErrKeyGeneration, ErrUnsupportedCurve, c)
}

// PublicFromPrivate recomputes the public half of priv.
func PublicFromPrivate(priv PrivateKey) (PublicKey, error) {
	switch priv.Curve {
	case P256:
		k, err := ecdh.P256().NewPrivateKey(priv.Scalar)
		if err != nil {
			return PublicKey{}, fmt.Errorf("%w: %v", ErrMalformedKey, err)
		}
		return PublicKey{Curve: P256, Bytes: k.PublicKey().Bytes()}, nil
	case X25519:
		pub, err := x25519Public(priv.Scalar)
		if err != nil {
			return PublicKey{}, fmt.Errorf("%w: %v", ErrMalformedKey, err)
		}
		return PublicKey{Curve: X25519, Bytes: pub}, nil
	}
	return PublicKey{}, fmt.Errorf("%w: %q", ErrUnsupportedCurve, priv.Curve)
}

// validatePublic checks that pub is a usable point on its curve.
func validatePublic(pub PublicKey) error {
	switch pub.Curve {
	case P256:
		if _, err := ecdh.P256().NewPublicKey(pub.Bytes); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedKey, err)
		}
		return nil
	case X25519:
		if len(pub.Bytes) != x25519KeySize {
			return fmt.Errorf("%w: X25519 public: want %d bytes, got %d",
				ErrMalformedKey, x25519KeySize, len(pub.Bytes))
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedCurve, pub.Curve)
}
