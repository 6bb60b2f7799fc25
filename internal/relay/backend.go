package relay

import (
	"context"
	"errors"

	"chatseal/internal/domain"
)

// ErrUnknownUser is returned by Backend.User for a user the relay has never
// seen.
var ErrUnknownUser = errors.New("unknown user")

// Backend is the relay's storage.
//
// A user becomes known when they publish a key or take part in a stored
// message. Messages are returned oldest first; limit > 0 keeps only the most
// recent limit records.
type Backend interface {
	PutPublicKey(ctx context.Context, user domain.UserID, key domain.PublicKeySnapshot) error
	User(ctx context.Context, user domain.UserID) (domain.UserProfile, error)
	AppendMessage(ctx context.Context, rec domain.MessageRecord) (domain.MessageRecord, error)
	Messages(ctx context.Context, conversation domain.ConversationID, limit int) ([]domain.MessageRecord, error)
}

func tail[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[len(s)-limit:]
	}
	return s
}
