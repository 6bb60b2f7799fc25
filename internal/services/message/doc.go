// Package message sends and receives chat messages through the relay,
// encrypting them end to end whenever the recipient has published a key.
//
// Sending looks up the recipient's public key in the directory. With a key,
// the message is sealed by the encryption service and posted with an empty
// content field. Without one, or when sealing fails, it is posted as
// plaintext, unless the service was built with RequireEncryption, in which
// case nothing is sent.
//
// Receiving fetches a conversation, decrypts every encrypted record sent by
// the other party in one batch, and renders placeholders for records that
// cannot be shown.
package message
