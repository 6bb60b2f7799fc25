package types

// PublicKeySnapshot is the exported JWK JSON of a user's public key, as
// published to the directory and embedded in envelopes.
type PublicKeySnapshot string

// String returns the JWK JSON.
func (s PublicKeySnapshot) String() string { return string(s) }

// SerializedKeyPair is the only form of a key pair the key store ever sees.
// Both halves are JWK JSON strings.
type SerializedKeyPair struct {
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

// Empty reports whether either half is missing.
func (p SerializedKeyPair) Empty() bool { return p.PublicKey == "" || p.PrivateKey == "" }
