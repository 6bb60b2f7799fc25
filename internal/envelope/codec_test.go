package envelope_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"chatseal/internal/domain"
	"chatseal/internal/envelope"
)

func TestEncodeDecode(t *testing.T) {
	env := domain.Envelope{
		Ciphertext:      "Y2lwaGVydGV4dA==",
		Nonce:           "AAECAwQFBgcICQoL",
		SenderPublicKey: `{"kty":"EC","crv":"P-256","x":"a","y":"b"}`,
	}
	msg, err := envelope.Encode(env)
	require.NoError(t, err)
	require.Equal(t, env.Nonce, msg.IV)

	// The nonce is not part of the JSON blob.
	var fields map[string]any
	require.NoError(t, json.Unmarshal([]byte(msg.EncryptedContent), &fields))
	require.Len(t, fields, 2)
	require.Equal(t, env.Ciphertext, fields["ciphertext"])
	require.Equal(t, env.SenderPublicKey.String(), fields["senderPublicKey"])

	got, err := envelope.Decode(msg)
	require.NoError(t, err)
	require.Equal(t, env, got)
}

func TestDecode_Malformed(t *testing.T) {
	cases := []struct {
		name string
		msg  domain.EncryptedMessage
	}{
		{"empty content", domain.EncryptedMessage{IV: "iv"}},
		{"not json", domain.EncryptedMessage{EncryptedContent: "nope", IV: "iv"}},
		{"missing ciphertext", domain.EncryptedMessage{EncryptedContent: `{"senderPublicKey":"k"}`, IV: "iv"}},
		{"empty ciphertext", domain.EncryptedMessage{EncryptedContent: `{"ciphertext":"","senderPublicKey":"k"}`, IV: "iv"}},
		{"missing sender key", domain.EncryptedMessage{EncryptedContent: `{"ciphertext":"c"}`, IV: "iv"}},
		{"missing iv", domain.EncryptedMessage{EncryptedContent: `{"ciphertext":"c","senderPublicKey":"k"}`}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := envelope.Decode(tc.msg)
			require.ErrorIs(t, err, envelope.ErrMalformedEnvelope)
		})
	}
}

func TestEncode_RejectsIncomplete(t *testing.T) {
	_, err := envelope.Encode(domain.Envelope{Ciphertext: "c", Nonce: "n"})
	require.ErrorIs(t, err, envelope.ErrMalformedEnvelope)
}
