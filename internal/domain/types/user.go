package types

// UserProfile is the directory entry for a user. PublicKey is nil until the
// user publishes one.
type UserProfile struct {
	ID        UserID             `json:"id"`
	PublicKey *PublicKeySnapshot `json:"publicKey"`
}

// PublishKeyRequest is the body of a public-key update.
type PublishKeyRequest struct {
	UserID    UserID            `json:"userId"`
	PublicKey PublicKeySnapshot `json:"publicKey"`
}
