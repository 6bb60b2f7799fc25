package crypto

import (
	"crypto/rand"
	"fmt"
)

// NonceSize is the AEAD nonce length shared by both suites (96 bits).
const NonceSize = 12

// Sealed is base64-encoded ciphertext (with tag) and its nonce.
type Sealed struct {
	Ciphertext string
	Nonce      string
}

// EncryptMessage seals the UTF-8 bytes of plaintext under key.
//
// Every call draws a new random nonce; a nonce is never reused under a key.
func EncryptMessage(plaintext string, key *SharedKey) (Sealed, error) {
	if key == nil {
		return Sealed{}, fmt.Errorf("%w: nil shared key", ErrMalformedKey)
	}
	aead, err := key.aead()
	if err != nil {
		return Sealed{}, err
	}
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return Sealed{}, err
	}
	ct := aead.Seal(nil, nonce, []byte(plaintext), nil)
	return Sealed{Ciphertext: B64(ct), Nonce: B64(nonce)}, nil
}

// DecryptMessage opens base64 ciphertext with the base64 nonce under key.
// It returns ErrAuthentication when the tag does not verify and never returns
// partial plaintext.
func DecryptMessage(ciphertext, nonce string, key *SharedKey) (string, error) {
	if key == nil {
		return "", fmt.Errorf("%w: nil shared key", ErrMalformedKey)
	}
	ct, err := unB64(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext: %v", ErrMalformedCiphertext, err)
	}
	n, err := unB64(nonce)
	if err != nil {
		return "", fmt.Errorf("%w: nonce: %v", ErrMalformedCiphertext, err)
	}
	if len(n) != NonceSize {
		return "", fmt.Errorf("%w: nonce must be %d bytes, got %d", ErrMalformedCiphertext, NonceSize, len(n))
	}
	aead, err := key.aead()
	if err != nil {
		return "", err
	}
	if len(ct) < aead.Overhead() {
		return "", fmt.Errorf("%w: ciphertext shorter than tag", ErrMalformedCiphertext)
	}
	pt, err := aead.Open(nil, n, ct, nil)
	if err != nil {
		return "", ErrAuthentication
	}
	return string(pt), nil
}
