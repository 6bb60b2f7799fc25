// Package keypair manages each local user's long-term agreement key pair.
//
// A pair is created lazily on first use, persisted through a domain.KeyStore
// as exported JWK halves, and reused on every later call. It is never rotated
// automatically; ResetKeyPair and RotateKeyPair are explicit user actions.
package keypair
