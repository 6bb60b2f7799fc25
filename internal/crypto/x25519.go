package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/curve25519"
)

const x25519KeySize = curve25519.ScalarSize

// GenerateX25519 returns a fresh Curve25519 key pair.
// The private key is clamped per RFC 7748.
func GenerateX25519() (priv, pub [32]byte, err error) {
	if _, err = rand.Read(priv[:]); err != nil {
		return
	}
	clamp(&priv)
	pb, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return
	}
	copy(pub[:], pb)
	return
}

// dhX25519 computes X25519 Diffie–Hellman. Low-order peer points yield an
// all-zero output, which curve25519.X25519 rejects.
func dhX25519(priv, pub []byte) ([]byte, error) {
	if len(priv) != x25519KeySize || len(pub) != x25519KeySize {
		return nil, fmt.Errorf("%w: X25519 keys must be %d bytes", ErrMalformedKey, x25519KeySize)
	}
	out, err := curve25519.X25519(priv, pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}
	return out, nil
}

func x25519Public(priv []byte) ([]byte, error) {
	if len(priv) != x25519KeySize {
		return nil, fmt.Errorf("X25519 private: want %d bytes, got %d", x25519KeySize, len(priv))
	}
	return curve25519.X25519(priv, curve25519.Basepoint)
}

func clamp(k *[32]byte) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}
