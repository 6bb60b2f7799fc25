// Package relay is the store-and-forward service between chatseal peers and
// the HTTP client that talks to it.
//
// The relay keeps two things: a public-key directory (one JWK snapshot per
// user) and per-conversation message logs. It never sees private keys or
// plaintext of encrypted messages.
//
// Routes (JSON over HTTP):
//   - POST /users/public-key         publish {userId, publicKey}
//   - GET  /users/{userId}           fetch {id, publicKey}; publicKey may be null
//   - POST /messages                 store a message record (201)
//   - GET  /messages?conversationId= list a conversation, oldest first
//
// Storage is pluggable through Backend: MemoryBackend for tests and single
// process use, RedisBackend for a shared deployment.
//
// Client implements domain.RelayClient. It retries network failures and 5xx
// responses with exponential backoff; other non-2xx statuses are permanent
// and are returned as errors with the method, URL, and status text.
package relay
