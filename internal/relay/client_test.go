package relay_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chatseal/internal/domain"
	"chatseal/internal/relay"
)

var fastRetry = relay.RetryPolicy{
	InitialInterval: time.Millisecond,
	MaxInterval:     5 * time.Millisecond,
	MaxElapsedTime:  time.Second,
}

func newClient(t *testing.T, url string) *relay.Client {
	t.Helper()
	c, err := relay.NewClient(relay.ClientConfig{BaseURL: url, Timeout: 2 * time.Second, Retry: fastRetry})
	require.NoError(t, err)
	return c
}

func TestClient_AgainstServer(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t, srv.URL)
	ctx := context.Background()

	_, found, err := c.LookupPublicKey(ctx, "bob")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, c.PublishPublicKey(ctx, "bob", `{"kty":"OKP"}`))
	key, found, err := c.LookupPublicKey(ctx, "bob")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, domain.PublicKeySnapshot(`{"kty":"OKP"}`), key)

	for _, text := range []string{"one", "two", "three"} {
		_, err := c.SendMessage(ctx, domain.MessageRecord{
			ConversationID: "c 1/x", SenderID: "alice", ReceiverID: "bob", Content: text,
		})
		require.NoError(t, err)
	}
	// alice is known now but has no key
	_, found, err = c.LookupPublicKey(ctx, "alice")
	require.NoError(t, err)
	require.False(t, found)

	msgs, err := c.FetchMessages(ctx, "c 1/x", 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "two", msgs[0].Content)
	require.Equal(t, "three", msgs[1].Content)
}

func TestClient_LookupUserIDWithSlash(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, c.PublishPublicKey(ctx, "team/alice", `{"kty":"EC"}`))
	key, found, err := c.LookupPublicKey(ctx, "team/alice")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, domain.PublicKeySnapshot(`{"kty":"EC"}`), key)

	_, found, err = c.LookupPublicKey(ctx, "team")
	require.NoError(t, err)
	require.False(t, found)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"bob","publicKey":"k"}`))
	}))
	defer srv.Close()

	key, found, err := newClient(t, srv.URL).LookupPublicKey(context.Background(), "bob")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, domain.PublicKeySnapshot("k"), key)
	require.EqualValues(t, 3, calls.Load())
}

func TestClient_ClientErrorsArePermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).SendMessage(context.Background(), domain.MessageRecord{})
	var se *relay.StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusBadRequest, se.Code)
	require.EqualValues(t, 1, calls.Load())
}

func TestClient_GivesUpAfterMaxElapsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := relay.NewClient(relay.ClientConfig{
		BaseURL: srv.URL,
		Retry:   relay.RetryPolicy{InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, MaxElapsedTime: 20 * time.Millisecond},
	})
	require.NoError(t, err)

	_, _, err = c.LookupPublicKey(context.Background(), "bob")
	require.Error(t, err)
	require.False(t, relay.IsNotFound(err))
}

func TestClient_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{"))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).FetchMessages(context.Background(), "c", 0)
	require.ErrorIs(t, err, relay.ErrMalformedResponse)
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newClient(t, srv.URL).FetchMessages(ctx, "c", 0)
	require.Error(t, err)
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	_, err := relay.NewClient(relay.ClientConfig{BaseURL: "not a url"})
	require.Error(t, err)
}
