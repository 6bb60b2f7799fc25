package message

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chatseal/internal/domain"
	"chatseal/internal/logging"
)

const (
	// DecryptionFailedText replaces an encrypted message that could not be
	// decrypted.
	DecryptionFailedText = "[Decryption failed]"

	// EncryptedText stands in for an encrypted message with no local
	// plaintext, such as one this user sent.
	EncryptedText = "🔒 Encrypted"
)

var (
	// ErrEmptyMessage is returned when the text is blank.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrEncryptionUnavailable is returned when encryption is required but the
	// recipient has no usable key or sealing failed.
	ErrEncryptionUnavailable = errors.New("encryption unavailable for recipient")
)

// Options tune the service.
type Options struct {
	// RequireEncryption refuses the plaintext fallback.
	RequireEncryption bool
}

// Service implements domain.MessageService.
type Service struct {
	relay  domain.RelayClient
	crypto domain.EncryptionService
	log    logging.Logger
	opts   Options
}

// New constructs a message service.
func New(
	relay domain.RelayClient,
	enc domain.EncryptionService,
	log logging.Logger,
	opts Options,
) *Service {
	return &Service{relay: relay, crypto: enc, log: log, opts: opts}
}

// SendMessage posts text from one user to another in a conversation and
// returns the record as stored by the relay.
func (s *Service) SendMessage(
	ctx context.Context,
	from domain.UserID,
	to domain.UserID,
	conversation domain.ConversationID,
	text string,
) (domain.MessageRecord, error) {
	if strings.TrimSpace(text) == "" {
		return domain.MessageRecord{}, ErrEmptyMessage
	}

	rec := domain.MessageRecord{
		ConversationID: conversation,
		SenderID:       from,
		ReceiverID:     to,
		Content:        text,
	}

	if enc, ok := s.seal(ctx, from, to, text); ok {
		rec.Content = ""
		rec.IsEncrypted = true
		rec.EncryptedContent = &enc.EncryptedContent
		rec.IV = &enc.IV
	} else if s.opts.RequireEncryption {
		return domain.MessageRecord{}, fmt.Errorf("send to %q: %w", to, ErrEncryptionUnavailable)
	}

	stored, err := s.relay.SendMessage(ctx, rec)
	if err != nil {
		return domain.MessageRecord{}, fmt.Errorf("send message: %w", err)
	}
	s.log.Debug(ctx, "message sent",
		"conversation", conversation,
		"id", stored.ID,
		"encrypted", stored.IsEncrypted,
	)
	return stored, nil
}

// seal encrypts text for to when it has a published key.
func (s *Service) seal(
	ctx context.Context,
	from domain.UserID,
	to domain.UserID,
	text string,
) (domain.EncryptedMessage, bool) {
	key, found, err := s.relay.LookupPublicKey(ctx, to)
	if err != nil {
		s.log.Warn(ctx, "recipient key lookup failed; sending unencrypted", "recipient", to, "err", err)
		return domain.EncryptedMessage{}, false
	}
	if !found {
		s.log.Info(ctx, "recipient has no public key; sending unencrypted", "recipient", to)
		return domain.EncryptedMessage{}, false
	}
	enc, ok := s.crypto.EncryptForRecipient(ctx, from, key, text)
	if !ok {
		s.log.Warn(ctx, "encryption failed; sending unencrypted", "recipient", to)
	}
	return enc, ok
}

// ReceiveMessages fetches up to limit messages of a conversation (all of them
// when limit <= 0) and renders them for me.
func (s *Service) ReceiveMessages(
	ctx context.Context,
	me domain.UserID,
	conversation domain.ConversationID,
	limit int,
) ([]domain.DisplayMessage, error) {
	recs, err := s.relay.FetchMessages(ctx, conversation, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}

	out := make([]domain.DisplayMessage, len(recs))
	var (
		batch []domain.EncryptedMessage
		slots []int
	)
	for i, r := range recs {
		out[i] = domain.DisplayMessage{
			ID:             r.ID,
			ConversationID: r.ConversationID,
			SenderID:       r.SenderID,
			ReceiverID:     r.ReceiverID,
			Text:           r.Content,
			Encrypted:      r.IsEncrypted,
			CreatedAt:      r.CreatedAt,
		}
		if !r.IsEncrypted {
			continue
		}
		if r.SenderID == me {
			out[i].Text = EncryptedText
			continue
		}
		enc, ok := r.Encrypted()
		if !ok {
			out[i].Text = DecryptionFailedText
			continue
		}
		batch = append(batch, enc)
		slots = append(slots, i)
	}

	if len(batch) > 0 {
		for j, res := range s.crypto.DecryptBatch(ctx, me, batch) {
			i := slots[j]
			if !res.OK {
				out[i].Text = DecryptionFailedText
				continue
			}
			out[i].Text = res.Plaintext
			out[i].Decrypted = true
		}
	}
	return out, nil
}

// Compile-time assertion that Service implements domain.MessageService.
var _ domain.MessageService = (*Service)(nil)
