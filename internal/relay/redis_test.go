package relay_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chatseal/internal/domain"
	"chatseal/internal/relay"
)

// Set CHATSEAL_TEST_REDIS=redis://localhost:6379/15 to run against a server.
func TestRedisBackend(t *testing.T) {
	url := os.Getenv("CHATSEAL_TEST_REDIS")
	if url == "" {
		t.Skip("CHATSEAL_TEST_REDIS not set")
	}
	b, err := relay.NewRedisBackend(url)
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()
	suffix := uuid.NewString()
	alice := domain.UserID("alice-" + suffix)
	bob := domain.UserID("bob-" + suffix)
	conv := domain.ConversationID("conv-" + suffix)

	_, err = b.User(ctx, alice)
	require.ErrorIs(t, err, relay.ErrUnknownUser)

	require.NoError(t, b.PutPublicKey(ctx, alice, "key-a"))
	p, err := b.User(ctx, alice)
	require.NoError(t, err)
	require.NotNil(t, p.PublicKey)
	require.Equal(t, domain.PublicKeySnapshot("key-a"), *p.PublicKey)

	for _, text := range []string{"1", "2", "3"} {
		_, err := b.AppendMessage(ctx, domain.MessageRecord{ConversationID: conv, SenderID: alice, ReceiverID: bob, Content: text})
		require.NoError(t, err)
	}
	p, err = b.User(ctx, bob)
	require.NoError(t, err)
	require.Nil(t, p.PublicKey)

	all, err := b.Messages(ctx, conv, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	last, err := b.Messages(ctx, conv, 2)
	require.NoError(t, err)
	require.Equal(t, "2", last[0].Content)
	require.Equal(t, "3", last[1].Content)
}
