// Package e2e is the end-to-end encryption layer between the key pair
// service and the message service.
//
// EncryptForRecipient seals a message under the key agreed between the
// sender's private key and the recipient's published public key, and embeds
// the sender's public key in the envelope. DecryptFromSender reverses it with
// the recipient's private key and that embedded key, so it needs no directory
// lookup and keeps working after the sender rotates.
//
// Neither call returns an error. Failures are logged and reported as ok=false
// so callers can fall back to plaintext or render a placeholder.
package e2e
