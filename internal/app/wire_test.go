package app_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"chatseal/internal/app"
	"chatseal/internal/logging"
	"chatseal/internal/relay"
	messagesvc "chatseal/internal/services/message"
)

func newWire(t *testing.T, mutate func(*app.Config)) *app.Wire {
	t.Helper()
	srv := httptest.NewServer(relay.NewServer(relay.NewMemoryBackend(), logging.NewNop()))
	t.Cleanup(srv.Close)

	cfg := app.Defaults()
	cfg.Home = t.TempDir()
	cfg.RelayURL = srv.URL
	cfg.Store = app.StoreMemory
	if mutate != nil {
		mutate(&cfg)
	}
	w, err := app.NewWire(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestWire_EndToEnd(t *testing.T) {
	for _, curve := range []string{"P-256", "X25519"} {
		t.Run(curve, func(t *testing.T) {
			w := newWire(t, func(c *app.Config) { c.Curve = curve })
			ctx := context.Background()
			alice, bob := w.ForUser("alice"), w.ForUser("bob")

			_, err := bob.Init(ctx)
			require.NoError(t, err)

			rec, err := alice.Send(ctx, "bob", "alice-bob", "hello")
			require.NoError(t, err)
			require.True(t, rec.IsEncrypted)

			// bob replies before alice has published: plaintext fallback
			rec, err = bob.Send(ctx, "alice", "alice-bob", "hi")
			require.NoError(t, err)
			require.False(t, rec.IsEncrypted)

			msgs, err := bob.Conversation(ctx, "alice-bob", 0)
			require.NoError(t, err)
			require.Len(t, msgs, 2)
			require.Equal(t, "hello", msgs[0].Text)
			require.True(t, msgs[0].Decrypted)
			require.Equal(t, "hi", msgs[1].Text)

			msgs, err = alice.Conversation(ctx, "alice-bob", 0)
			require.NoError(t, err)
			require.Equal(t, messagesvc.EncryptedText, msgs[0].Text)
		})
	}
}

func TestWire_RequireEncryption(t *testing.T) {
	w := newWire(t, func(c *app.Config) { c.RequireEncryption = true })
	_, err := w.ForUser("alice").Send(context.Background(), "bob", "c", "hello")
	require.ErrorIs(t, err, messagesvc.ErrEncryptionUnavailable)
}

func TestWire_SQLiteStorePersists(t *testing.T) {
	home := t.TempDir()
	cfg := app.Defaults()
	cfg.Home = home
	cfg.RelayURL = ""
	cfg.Store = app.StoreSQLite
	ctx := context.Background()

	w, err := app.NewWire(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	first, err := w.ForUser("alice").Init(ctx)
	require.NoError(t, err)
	require.Nil(t, w.Messages)
	require.NoError(t, w.Close())

	w, err = app.NewWire(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	defer w.Close()
	again, err := w.ForUser("alice").Init(ctx)
	require.NoError(t, err)
	require.Equal(t, first, again)

	_, err = w.ForUser("alice").Send(ctx, "bob", "c", "x")
	require.ErrorIs(t, err, app.ErrNoRelay)
}
