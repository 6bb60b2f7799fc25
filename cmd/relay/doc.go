// Package main runs the chatseal relay: a public-key directory plus
// per-conversation message logs, served over HTTP.
//
// HTTP API
//
//	POST /users/public-key {"userId": ..., "publicKey": ...}
//	    Publish or replace a user's public key (JWK JSON string).
//
//	GET /users/{userId}
//	    Return {"id", "publicKey"}. publicKey is null for a user seen in a
//	    conversation who never published; unknown users are 404.
//
//	POST /messages
//	    Store a message record. The relay assigns id and createdAt and
//	    answers 201 with the stored record.
//
//	GET /messages?conversationId=ID&limit=N
//	    Return the conversation oldest first; with limit, only the most
//	    recent N records.
//
// Behaviour
//
//   - With --redis the directory and logs live in Redis; otherwise they are
//     held in memory and lost on process exit.
//   - Responses are JSON. Non-2xx statuses carry {"error": "..."}.
//   - Every request is logged with method, path, status and duration.
//   - The default listen address is :8080.
//
// The relay never sees plaintext of encrypted messages or private keys; it
// stores ciphertext envelopes and public keys only.
package main
