package interfaces

import (
	"context"

	domaintypes "chatseal/internal/domain/types"
)

// KeyStore persists each local user's serialized key pair.
//
// Entries are scoped per user id so several local accounts never collide.
// Get reports ok=false when nothing is stored. Set overwrites (last write
// wins). Delete removes the entry and is a no-op when absent.
type KeyStore interface {
	Get(ctx context.Context, user domaintypes.UserID) (domaintypes.SerializedKeyPair, bool, error)
	Set(ctx context.Context, user domaintypes.UserID, pair domaintypes.SerializedKeyPair) error
	Delete(ctx context.Context, user domaintypes.UserID) error
}
