package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a short hex fingerprint of a public key.
//
// It hashes the curve name and point with SHA-256 and truncates to 10 bytes
// (20 hex chars).
func Fingerprint(pub PublicKey) string {
	h := sha256.New()
	h.Write([]byte(pub.Curve))
	h.Write(pub.Bytes)
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:10])
}
