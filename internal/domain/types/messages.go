package types

import "time"

// Envelope is the decoded form of an encrypted message: base64 ciphertext,
// base64 nonce, and the sender's public key at the time of sending.
type Envelope struct {
	Ciphertext      string
	Nonce           string
	SenderPublicKey PublicKeySnapshot
}

// EncryptedMessage is the envelope as it travels inside a MessageRecord.
// EncryptedContent is JSON {ciphertext, senderPublicKey}; IV is the base64 nonce.
type EncryptedMessage struct {
	EncryptedContent string `json:"encryptedContent"`
	IV               string `json:"iv"`
}

// MessageRecord is a message as stored by the relay. When IsEncrypted is
// false, Content is authoritative and the encryption fields are ignored.
type MessageRecord struct {
	ID               MessageID      `json:"id,omitempty"`
	ConversationID   ConversationID `json:"conversationId"`
	SenderID         UserID         `json:"senderId"`
	ReceiverID       UserID         `json:"receiverId"`
	Content          string         `json:"content"`
	IsEncrypted      bool           `json:"isEncrypted"`
	EncryptedContent *string        `json:"encryptedContent"`
	IV               *string        `json:"iv"`
	CreatedAt        time.Time      `json:"createdAt"`
}

// Encrypted returns the envelope fields when both are present.
func (m MessageRecord) Encrypted() (EncryptedMessage, bool) {
	if !m.IsEncrypted || m.EncryptedContent == nil || m.IV == nil ||
		*m.EncryptedContent == "" || *m.IV == "" {
		return EncryptedMessage{}, false
	}
	return EncryptedMessage{EncryptedContent: *m.EncryptedContent, IV: *m.IV}, true
}

// DisplayMessage is what MessageService.ReceiveMessages returns.
type DisplayMessage struct {
	ID             MessageID      `json:"id"`
	ConversationID ConversationID `json:"conversationId"`
	SenderID       UserID         `json:"senderId"`
	ReceiverID     UserID         `json:"receiverId"`
	Text           string         `json:"text"`
	Encrypted      bool           `json:"encrypted"`
	Decrypted      bool           `json:"decrypted"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// DecryptResult is one entry of a batch decrypt. OK is false when the
// message could not be decrypted; Plaintext is then empty.
type DecryptResult struct {
	Plaintext string
	OK        bool
}
