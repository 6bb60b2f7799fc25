package crypto

import "errors"

var (
	// ErrKeyGeneration is returned when the underlying primitive cannot produce a key pair.
	ErrKeyGeneration = errors.New("key generation failed")

	// ErrUnsupportedCurve is returned for a curve name other than P-256 or X25519.
	ErrUnsupportedCurve = errors.New("unsupported curve")

	// ErrMalformedKey is returned when a key cannot be parsed or is not a valid point.
	ErrMalformedKey = errors.New("malformed key")

	// ErrCurveMismatch is returned when the two sides of an agreement use different curves.
	ErrCurveMismatch = errors.New("curve mismatch")

	// ErrMalformedCiphertext is returned for undecodable ciphertext or a bad nonce length.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")

	// ErrAuthentication is returned when the AEAD tag does not verify.
	ErrAuthentication = errors.New("message authentication failed")
)
