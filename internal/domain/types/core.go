package types

// UserID identifies an account on the relay.
type UserID string

// String returns the string form of the user id.
func (u UserID) String() string { return string(u) }

// ConversationID identifies a conversation between two users.
type ConversationID string

// String returns the string form of the conversation identifier.
func (id ConversationID) String() string { return string(id) }

// MessageID is assigned by the relay when a message is stored.
type MessageID string

// String returns the string form of the message identifier.
func (id MessageID) String() string { return string(id) }

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }
