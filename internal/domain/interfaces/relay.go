package interfaces

import (
	"context"

	domaintypes "chatseal/internal/domain/types"
)

// KeyDirectory is where users publish and look up public keys.
//
// LookupPublicKey reports ok=false when the user never published a key; that
// is "chat not encrypted", not an error.
type KeyDirectory interface {
	LookupPublicKey(
		ctx context.Context,
		user domaintypes.UserID,
	) (domaintypes.PublicKeySnapshot, bool, error)
	PublishPublicKey(
		ctx context.Context,
		user domaintypes.UserID,
		key domaintypes.PublicKeySnapshot,
	) error
}

// MessageTransport stores and lists message records.
type MessageTransport interface {
	SendMessage(ctx context.Context, record domaintypes.MessageRecord) (domaintypes.MessageRecord, error)
	FetchMessages(
		ctx context.Context,
		conversation domaintypes.ConversationID,
		limit int,
	) ([]domaintypes.MessageRecord, error)
}

// RelayClient is how we talk to the relay server, all with context.
type RelayClient interface {
	KeyDirectory
	MessageTransport
}
