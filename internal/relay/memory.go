package relay

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"chatseal/internal/domain"
)

// MemoryBackend keeps everything in process memory.
type MemoryBackend struct {
	mu    sync.RWMutex
	users map[domain.UserID]*domain.PublicKeySnapshot
	convs map[domain.ConversationID][]domain.MessageRecord

	// now stamps stored messages.
	now func() time.Time
}

var _ Backend = (*MemoryBackend)(nil)

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		users: make(map[domain.UserID]*domain.PublicKeySnapshot),
		convs: make(map[domain.ConversationID][]domain.MessageRecord),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryBackend) PutPublicKey(_ context.Context, user domain.UserID, key domain.PublicKeySnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key
	m.users[user] = &k
	return nil
}

func (m *MemoryBackend) User(_ context.Context, user domain.UserID) (domain.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key, ok := m.users[user]
	if !ok {
		return domain.UserProfile{}, ErrUnknownUser
	}
	return domain.UserProfile{ID: user, PublicKey: key}, nil
}

func (m *MemoryBackend) AppendMessage(_ context.Context, rec domain.MessageRecord) (domain.MessageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec.ID = domain.MessageID(uuid.NewString())
	rec.CreatedAt = m.now()
	m.convs[rec.ConversationID] = append(m.convs[rec.ConversationID], rec)
	for _, u := range []domain.UserID{rec.SenderID, rec.ReceiverID} {
		if _, ok := m.users[u]; !ok {
			m.users[u] = nil
		}
	}
	return rec, nil
}

func (m *MemoryBackend) Messages(_ context.Context, conversation domain.ConversationID, limit int) ([]domain.MessageRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := tail(m.convs[conversation], limit)
	out := make([]domain.MessageRecord, len(msgs))
	copy(out, msgs)
	return out, nil
}
