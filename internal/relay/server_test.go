package relay_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"chatseal/internal/domain"
	"chatseal/internal/logging"
	"chatseal/internal/relay"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(relay.NewServer(relay.NewMemoryBackend(), logging.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func strptr(s string) *string { return &s }

func TestServer_PublishAndGetUser(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/users/alice", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/users/public-key",
		domain.PublishKeyRequest{UserID: "alice", PublicKey: `{"kty":"EC"}`})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/users/alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p domain.UserProfile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	require.Equal(t, domain.UserID("alice"), p.ID)
	require.NotNil(t, p.PublicKey)
	require.Equal(t, domain.PublicKeySnapshot(`{"kty":"EC"}`), *p.PublicKey)
}

func TestServer_PublishValidation(t *testing.T) {
	srv := newTestServer(t)

	for name, body := range map[string]any{
		"no user": domain.PublishKeyRequest{PublicKey: "k"},
		"no key":  domain.PublishKeyRequest{UserID: "alice"},
		"garbage": "not an object",
	} {
		t.Run(name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, srv.URL+"/users/public-key", body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestServer_Messages(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/messages", domain.MessageRecord{
		ConversationID: "c1", SenderID: "alice", ReceiverID: "bob", Content: "plain",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var stored domain.MessageRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stored))
	require.NotEmpty(t, stored.ID)
	require.False(t, stored.CreatedAt.IsZero())

	resp = doJSON(t, http.MethodPost, srv.URL+"/messages", domain.MessageRecord{
		ConversationID: "c1", SenderID: "bob", ReceiverID: "alice",
		IsEncrypted: true, EncryptedContent: strptr(`{"ciphertext":"x","senderPublicKey":"y"}`), IV: strptr("AAAA"),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/messages?conversationId=c1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []domain.MessageRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 2)
	require.Equal(t, "plain", list[0].Content)
	require.True(t, list[1].IsEncrypted)
	require.Empty(t, list[1].Content)

	resp = doJSON(t, http.MethodGet, srv.URL+"/messages?conversationId=c1&limit=1", nil)
	list = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	require.True(t, list[0].IsEncrypted)

	// taking part in a conversation makes a user known, without a key
	resp = doJSON(t, http.MethodGet, srv.URL+"/users/bob", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p domain.UserProfile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	require.Nil(t, p.PublicKey)
}

func TestServer_MessageValidation(t *testing.T) {
	srv := newTestServer(t)

	cases := map[string]domain.MessageRecord{
		"no conversation": {SenderID: "a", ReceiverID: "b", Content: "x"},
		"no sender":       {ConversationID: "c", ReceiverID: "b", Content: "x"},
		"no receiver":     {ConversationID: "c", SenderID: "a", Content: "x"},
		"no content":      {ConversationID: "c", SenderID: "a", ReceiverID: "b"},
		"encrypted no iv": {ConversationID: "c", SenderID: "a", ReceiverID: "b", IsEncrypted: true, EncryptedContent: strptr("{}")},
	}
	for name, rec := range cases {
		t.Run(name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, srv.URL+"/messages", rec)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/messages", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = doJSON(t, http.MethodGet, srv.URL+"/messages?conversationId=c&limit=-1", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_EmptyConversation(t *testing.T) {
	srv := newTestServer(t)
	resp := doJSON(t, http.MethodGet, srv.URL+"/messages?conversationId=nobody", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []domain.MessageRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.NotNil(t, list)
	require.Empty(t, list)
}
