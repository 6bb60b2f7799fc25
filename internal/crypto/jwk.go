package crypto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const p256CoordSize = 32

// jwk is the subset of RFC 7517 needed for EC (P-256) and OKP (X25519)
// agreement keys. Field order and key_ops follow what WebCrypto's
// exportKey("jwk") produces so snapshots interoperate with browser peers.
type jwk struct {
	Kty    string   `json:"kty"`
	Crv    string   `json:"crv"`
	X      string   `json:"x"`
	Y      string   `json:"y,omitempty"`
	D      string   `json:"d,omitempty"`
	Ext    bool     `json:"ext"`
	KeyOps []string `json:"key_ops"`
}

// ExportPublicKey serialises pub as a JWK JSON string.
func ExportPublicKey(pub PublicKey) (string, error) {
	if err := validatePublic(pub); err != nil {
		return "", err
	}
	k, err := publicJWK(pub)
	if err != nil {
		return "", err
	}
	k.KeyOps = []string{}
	return marshalJWK(k)
}

// ExportPrivateKey serialises priv (with its public half) as a JWK JSON string.
func ExportPrivateKey(priv PrivateKey) (string, error) {
	pub, err := PublicFromPrivate(priv)
	if err != nil {
		return "", err
	}
	k, err := publicJWK(pub)
	if err != nil {
		return "", err
	}
	k.D = b64url(priv.Scalar)
	k.KeyOps = []string{"deriveKey"}
	return marshalJWK(k)
}

// ImportPublicKey parses a JWK JSON string into a validated public key.
func ImportPublicKey(s string) (PublicKey, error) {
	k, err := parseJWK(s)
	if err != nil {
		return PublicKey{}, err
	}
	return k.public()
}

// ImportPrivateKey parses a private JWK and checks that d matches x/y.
func ImportPrivateKey(s string) (PrivateKey, error) {
	k, err := parseJWK(s)
	if err != nil {
		return PrivateKey{}, err
	}
	if k.D == "" {
		return PrivateKey{}, fmt.Errorf("%w: JWK has no private component", ErrMalformedKey)
	}
	pub, err := k.public()
	if err != nil {
		return PrivateKey{}, err
	}
	d, err := unB64url(k.D)
	if err != nil {
		return PrivateKey{}, fmt.Errorf("%w: d: %v", ErrMalformedKey, err)
	}
	priv := PrivateKey{Curve: pub.Curve, Scalar: d}
	derived, err := PublicFromPrivate(priv)
	if err != nil {
		return PrivateKey{}, err
	}
	if !derived.Equal(pub) {
		return PrivateKey{}, fmt.Errorf("%w: private component does not match public", ErrMalformedKey)
	}
	return priv, nil
}

// ImportKeyPair parses the exported halves of a stored pair.
func ImportKeyPair(publicJWK, privateJWK string) (KeyPair, error) {
	pub, err := ImportPublicKey(publicJWK)
	if err != nil {
		return KeyPair{}, err
	}
	priv, err := ImportPrivateKey(privateJWK)
	if err != nil {
		return KeyPair{}, err
	}
	if priv.Curve != pub.Curve {
		return KeyPair{}, fmt.Errorf("%w: stored halves use %s and %s", ErrCurveMismatch, pub.Curve, priv.Curve)
	}
	derived, err := PublicFromPrivate(priv)
	if err != nil {
		return KeyPair{}, err
	}
	if !derived.Equal(pub) {
		return KeyPair{}, fmt.Errorf("%w: stored halves do not belong together", ErrMalformedKey)
	}
	return KeyPair{Public: pub, Private: priv}, nil
}

func publicJWK(pub PublicKey) (jwk, error) {
	switch pub.Curve {
	case P256:
		// Uncompressed SEC1: 0x04 || X || Y.
		if len(pub.Bytes) != 1+2*p256CoordSize || pub.Bytes[0] != 4 {
			return jwk{}, fmt.Errorf("%w: P-256 point is not uncompressed", ErrMalformedKey)
		}
		return jwk{
			Kty: "EC",
			Crv: string(P256),
			X:   b64url(pub.Bytes[1 : 1+p256CoordSize]),
			Y:   b64url(pub.Bytes[1+p256CoordSize:]),
			Ext: true,
		}, nil
	case X25519:
		return jwk{
			Kty: "OKP",
			Crv: string(X25519),
			X:   b64url(pub.Bytes),
			Ext: true,
		}, nil
	}
	return jwk{}, fmt.Errorf("%w: %q", ErrUnsupportedCurve, pub.Curve)
}

func (k jwk) public() (PublicKey, error) {
	x, err := unB64url(k.X)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: x: %v", ErrMalformedKey, err)
	}
	var pub PublicKey
	switch {
	case k.Kty == "EC" && k.Crv == string(P256):
		y, err := unB64url(k.Y)
		if err != nil {
			return PublicKey{}, fmt.Errorf("%w: y: %v", ErrMalformedKey, err)
		}
		if len(x) != p256CoordSize || len(y) != p256CoordSize {
			return PublicKey{}, fmt.Errorf("%w: P-256 coordinates must be %d bytes", ErrMalformedKey, p256CoordSize)
		}
		point := make([]byte, 0, 1+2*p256CoordSize)
		point = append(point, 4)
		point = append(point, x...)
		point = append(point, y...)
		pub = PublicKey{Curve: P256, Bytes: point}
	case k.Kty == "OKP" && k.Crv == string(X25519):
		pub = PublicKey{Curve: X25519, Bytes: x}
	default:
		return PublicKey{}, fmt.Errorf("%w: kty=%q crv=%q", ErrUnsupportedCurve, k.Kty, k.Crv)
	}
	if err := validatePublic(pub); err != nil {
		return PublicKey{}, err
	}
	return pub, nil
}

func parseJWK(s string) (jwk, error) {
	var k jwk
	if s == "" {
		return k, fmt.Errorf("%w: empty JWK", ErrMalformedKey)
	}
	if err := json.Unmarshal([]byte(s), &k); err != nil {
		return k, fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}
	return k, nil
}

func marshalJWK(k jwk) (string, error) {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(k); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
