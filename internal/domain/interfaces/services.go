package interfaces

import (
	"context"

	"chatseal/internal/crypto"
	domaintypes "chatseal/internal/domain/types"
)

// KeyPairService obtains, exports, resets and publishes local key pairs.
type KeyPairService interface {
	GetOrCreateKeyPair(ctx context.Context, user domaintypes.UserID) (crypto.KeyPair, error)
	ExportKey(pub crypto.PublicKey) (domaintypes.PublicKeySnapshot, error)
	ResetKeyPair(ctx context.Context, user domaintypes.UserID) error
	RotateKeyPair(ctx context.Context, user domaintypes.UserID) (crypto.KeyPair, error)
	Publish(ctx context.Context, user domaintypes.UserID) (domaintypes.PublicKeySnapshot, error)
	Fingerprint(ctx context.Context, user domaintypes.UserID) (domaintypes.Fingerprint, error)
}

// EncryptionService is the end-to-end layer. It never returns errors:
// failures are logged and reported as ok=false so callers can fall back.
type EncryptionService interface {
	EncryptForRecipient(
		ctx context.Context,
		sender domaintypes.UserID,
		recipientKey domaintypes.PublicKeySnapshot,
		message string,
	) (domaintypes.EncryptedMessage, bool)
	DecryptFromSender(
		ctx context.Context,
		recipient domaintypes.UserID,
		encryptedContent string,
		iv string,
	) (string, bool)
	DecryptBatch(
		ctx context.Context,
		recipient domaintypes.UserID,
		messages []domaintypes.EncryptedMessage,
	) []domaintypes.DecryptResult
}

// MessageService sends and receives messages, encrypting when it can.
type MessageService interface {
	SendMessage(
		ctx context.Context,
		from domaintypes.UserID,
		to domaintypes.UserID,
		conversation domaintypes.ConversationID,
		text string,
	) (domaintypes.MessageRecord, error)
	ReceiveMessages(
		ctx context.Context,
		me domaintypes.UserID,
		conversation domaintypes.ConversationID,
		limit int,
	) ([]domaintypes.DisplayMessage, error)
}
