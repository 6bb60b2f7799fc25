package crypto

import (
	"encoding/base64"
	"strings"
)

// B64 returns standard base64 encoding without newlines.
func B64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

// unB64 decodes standard base64.
func unB64(s string) ([]byte, error) { return base64.StdEncoding.DecodeString(s) }

// b64url encodes JWK members (RFC 7518: base64url, no padding).
func b64url(b []byte) string { return base64.RawURLEncoding.EncodeToString(b) }

// unB64url tolerates trailing padding, which some encoders emit.
func unB64url(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
