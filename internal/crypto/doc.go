// Package crypto exposes the primitives behind chatseal's end-to-end layer.
//
// Contents
//
//   - Key-agreement key pairs over P-256 or X25519 (GenerateKeyPair)
//   - JWK import/export of those keys (ExportPublicKey, ImportPublicKey, ...)
//   - Shared-key derivation from a local private key and a peer public key
//     (DeriveSharedKey)
//   - Authenticated encryption under a shared key with a fresh random nonce
//     per call (EncryptMessage, DecryptMessage)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Suites
//
// The curve of the key pair selects the whole suite:
//
//	P-256   raw ECDH x-coordinate as an AES-256-GCM key (WebCrypto compatible)
//	X25519  HKDF-SHA256 over the DH output as a ChaCha20-Poly1305 key
//
// Both use 96-bit nonces. A SharedKey never exposes its bytes; callers should
// Wipe it once the message is sealed or opened.
package crypto
