// Package store provides persistence for each local user's key pair.
//
// It contains concrete implementations of domain.KeyStore:
//   - MemoryKeyStore: process-local map, for tests and throwaway sessions
//   - KeyFileStore: JSON on disk under the configured home directory,
//     optionally sealed with a passphrase (scrypt + ChaCha20-Poly1305)
//   - SQLiteKeyStore: a key_pairs table in a local SQLite database
//
// All implementations are concurrency-safe. Entries are keyed by user id and
// hold only the exported JWK halves; the private half never leaves the device.
// Lifecycle: a store is opened when the app wires its dependencies, closed on
// exit, and a user's entry is removed on logout or key reset (Delete).
package store
