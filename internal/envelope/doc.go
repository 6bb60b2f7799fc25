// Package envelope converts between the decoded Envelope and the two wire
// fields carried by a message record.
//
// Wire format
//
//	encryptedContent  JSON {"ciphertext": <base64>, "senderPublicKey": <JWK JSON string>}
//	iv                base64 nonce
//
// The nonce travels beside the JSON blob rather than inside it. Decode
// treats any missing piece as ErrMalformedEnvelope; it never substitutes an
// empty default.
package envelope
