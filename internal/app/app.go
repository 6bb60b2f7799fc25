package app

import (
	"context"

	"chatseal/internal/domain"
)

// App is the wired dependency graph acting for one local user.
type App struct {
	*Wire
	User domain.UserID
}

// ForUser binds w to user.
func (w *Wire) ForUser(user domain.UserID) *App { return &App{Wire: w, User: user} }

// Init makes sure the user has a key pair and, when a relay is configured,
// publishes its public half. It returns the key fingerprint.
func (a *App) Init(ctx context.Context) (domain.Fingerprint, error) {
	if a.Relay != nil {
		if _, err := a.Keys.Publish(ctx, a.User); err != nil {
			return "", err
		}
	}
	return a.Keys.Fingerprint(ctx, a.User)
}

// Send posts text to another user in a conversation.
func (a *App) Send(
	ctx context.Context,
	to domain.UserID,
	conversation domain.ConversationID,
	text string,
) (domain.MessageRecord, error) {
	if a.Messages == nil {
		return domain.MessageRecord{}, ErrNoRelay
	}
	return a.Messages.SendMessage(ctx, a.User, to, conversation, text)
}

// Conversation lists a conversation as this user sees it.
func (a *App) Conversation(
	ctx context.Context,
	conversation domain.ConversationID,
	limit int,
) ([]domain.DisplayMessage, error) {
	if a.Messages == nil {
		return nil, ErrNoRelay
	}
	return a.Messages.ReceiveMessages(ctx, a.User, conversation, limit)
}

// PublicKey returns the user's exported public key, creating the pair if
// needed.
func (a *App) PublicKey(ctx context.Context) (domain.PublicKeySnapshot, error) {
	kp, err := a.Keys.GetOrCreateKeyPair(ctx, a.User)
	if err != nil {
		return "", err
	}
	return a.Keys.ExportKey(kp.Public)
}
