package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"chatseal/internal/util/memzero"
)

// SharedKeySize is the length of every derived symmetric key (256 bits).
const SharedKeySize = 32

// x25519Info binds HKDF output to this protocol and suite.
var x25519Info = []byte("chatseal-x25519-chacha20poly1305")

// SharedKey is a symmetric key derived by key agreement. It can only be used
// through EncryptMessage and DecryptMessage.
type SharedKey struct {
	curve Curve
	key   [SharedKeySize]byte
}

// Curve reports which suite the key belongs to.
func (k *SharedKey) Curve() Curve { return k.curve }

// Wipe zeroes the key material.
func (k *SharedKey) Wipe() {
	if k != nil {
		memzero.Zero(k.key[:])
	}
}

// DeriveSharedKey combines a local private key with a peer public key.
//
// The result is deterministic and commutative: (A.priv, B.pub) and
// (B.priv, A.pub) yield the same key.
func DeriveSharedKey(local PrivateKey, peer PublicKey) (*SharedKey, error) {
	if local.Curve != peer.Curve {
		return nil, fmt.Errorf("%w: local %s, peer %s", ErrCurveMismatch, local.Curve, peer.Curve)
	}
	out := &SharedKey{curve: local.Curve}
	switch local.Curve {
	case P256:
		priv, err := ecdh.P256().NewPrivateKey(local.Scalar)
		if err != nil {
			return nil, fmt.Errorf("%w: private: %v", ErrMalformedKey, err)
		}
		pub, err := ecdh.P256().NewPublicKey(peer.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: peer: %v", ErrMalformedKey, err)
		}
		secret, err := priv.ECDH(pub)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedKey, err)
		}
		copy(out.key[:], secret)
		memzero.Zero(secret)
	case X25519:
		secret, err := dhX25519(local.Scalar, peer.Bytes)
		if err != nil {
			return nil, err
		}
		defer memzero.Zero(secret)
		r := hkdf.New(sha256.New, secret, nil, x25519Info)
		if _, err := io.ReadFull(r, out.key[:]); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCurve, local.Curve)
	}
	return out, nil
}

// aead returns the AEAD for the key's suite.
func (k *SharedKey) aead() (cipher.AEAD, error) {
	switch k.curve {
	case P256:
		block, err := aes.NewCipher(k.key[:])
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	case X25519:
		return chacha20poly1305.New(k.key[:])
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedCurve, k.curve)
}
