package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"chatseal/internal/domain"
)

// ErrMalformedEnvelope is returned when the wire fields are not a complete envelope.
var ErrMalformedEnvelope = errors.New("malformed envelope")

// content is the JSON carried in encryptedContent. Pointers distinguish an
// absent member from an empty one.
type content struct {
	Ciphertext      *string `json:"ciphertext"`
	SenderPublicKey *string `json:"senderPublicKey"`
}

// Encode serialises env into the encryptedContent/iv pair.
func Encode(env domain.Envelope) (domain.EncryptedMessage, error) {
	if err := validate(env); err != nil {
		return domain.EncryptedMessage{}, err
	}
	ct := env.Ciphertext
	pk := env.SenderPublicKey.String()

	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(content{Ciphertext: &ct, SenderPublicKey: &pk}); err != nil {
		return domain.EncryptedMessage{}, err
	}
	return domain.EncryptedMessage{
		EncryptedContent: string(bytes.TrimRight(buf.Bytes(), "\n")),
		IV:               env.Nonce,
	}, nil
}

// Decode parses the encryptedContent/iv pair.
func Decode(msg domain.EncryptedMessage) (domain.Envelope, error) {
	if msg.EncryptedContent == "" {
		return domain.Envelope{}, fmt.Errorf("%w: empty encryptedContent", ErrMalformedEnvelope)
	}
	var c content
	if err := json.Unmarshal([]byte(msg.EncryptedContent), &c); err != nil {
		return domain.Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	env := domain.Envelope{Nonce: msg.IV}
	if c.Ciphertext != nil {
		env.Ciphertext = *c.Ciphertext
	}
	if c.SenderPublicKey != nil {
		env.SenderPublicKey = domain.PublicKeySnapshot(*c.SenderPublicKey)
	}
	if err := validate(env); err != nil {
		return domain.Envelope{}, err
	}
	return env, nil
}

func validate(env domain.Envelope) error {
	switch {
	case env.Ciphertext == "":
		return fmt.Errorf("%w: missing ciphertext", ErrMalformedEnvelope)
	case env.SenderPublicKey == "":
		return fmt.Errorf("%w: missing sender public key", ErrMalformedEnvelope)
	case env.Nonce == "":
		return fmt.Errorf("%w: missing iv", ErrMalformedEnvelope)
	}
	return nil
}
