package e2e

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"chatseal/internal/crypto"
	"chatseal/internal/domain"
	"chatseal/internal/envelope"
	"chatseal/internal/logging"
)

// DefaultBatchConcurrency bounds DecryptBatch when New is given zero.
const DefaultBatchConcurrency = 8

// Service implements domain.EncryptionService.
type Service struct {
	keys        domain.KeyPairService
	log         logging.Logger
	concurrency int
}

// New returns an encryption service. concurrency bounds DecryptBatch; values
// below one select DefaultBatchConcurrency.
func New(keys domain.KeyPairService, log logging.Logger, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = DefaultBatchConcurrency
	}
	return &Service{keys: keys, log: log, concurrency: concurrency}
}

// EncryptForRecipient encrypts message for the holder of recipientKey.
func (s *Service) EncryptForRecipient(
	ctx context.Context,
	sender domain.UserID,
	recipientKey domain.PublicKeySnapshot,
	message string,
) (domain.EncryptedMessage, bool) {
	out, err := s.encrypt(ctx, sender, recipientKey, message)
	if err != nil {
		s.log.Error(ctx, "encryption failed", "sender", sender, "err", err)
		return domain.EncryptedMessage{}, false
	}
	return out, true
}

// DecryptFromSender decrypts an envelope addressed to recipient.
func (s *Service) DecryptFromSender(
	ctx context.Context,
	recipient domain.UserID,
	encryptedContent string,
	iv string,
) (string, bool) {
	pt, err := s.decrypt(ctx, recipient, domain.EncryptedMessage{EncryptedContent: encryptedContent, IV: iv})
	if err != nil {
		s.log.Error(ctx, "decryption failed", "recipient", recipient, "err", err)
		return "", false
	}
	return pt, true
}

// DecryptBatch decrypts messages concurrently. Results are in input order;
// one failure does not affect the others.
func (s *Service) DecryptBatch(
	ctx context.Context,
	recipient domain.UserID,
	messages []domain.EncryptedMessage,
) []domain.DecryptResult {
	out := make([]domain.DecryptResult, len(messages))
	if len(messages) == 0 {
		return out
	}
	// Resolve the key pair once; each message only does the ECDH and AEAD work.
	kp, err := s.keys.GetOrCreateKeyPair(ctx, recipient)
	if err != nil {
		s.log.Error(ctx, "decryption failed", "recipient", recipient, "err", err)
		return out
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, m := range messages {
		i, m := i, m
		g.Go(func() error {
			env, err := envelope.Decode(m)
			var pt string
			if err == nil {
				pt, err = openEnvelope(kp, env)
			}
			if err != nil {
				s.log.Error(ctx, "decryption failed", "recipient", recipient, "err", err)
				return nil
			}
			out[i] = domain.DecryptResult{Plaintext: pt, OK: true}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *Service) encrypt(
	ctx context.Context,
	sender domain.UserID,
	recipientKey domain.PublicKeySnapshot,
	message string,
) (domain.EncryptedMessage, error) {
	kp, err := s.keys.GetOrCreateKeyPair(ctx, sender)
	if err != nil {
		return domain.EncryptedMessage{}, err
	}
	peer, err := crypto.ImportPublicKey(recipientKey.String())
	if err != nil {
		return domain.EncryptedMessage{}, fmt.Errorf("recipient key: %w", err)
	}
	shared, err := crypto.DeriveSharedKey(kp.Private, peer)
	if err != nil {
		return domain.EncryptedMessage{}, err
	}
	defer shared.Wipe()

	sealed, err := crypto.EncryptMessage(message, shared)
	if err != nil {
		return domain.EncryptedMessage{}, err
	}
	own, err := s.keys.ExportKey(kp.Public)
	if err != nil {
		return domain.EncryptedMessage{}, err
	}
	return envelope.Encode(domain.Envelope{
		Ciphertext:      sealed.Ciphertext,
		Nonce:           sealed.Nonce,
		SenderPublicKey: own,
	})
}

func (s *Service) decrypt(ctx context.Context, recipient domain.UserID, msg domain.EncryptedMessage) (string, error) {
	env, err := envelope.Decode(msg)
	if err != nil {
		return "", err
	}
	kp, err := s.keys.GetOrCreateKeyPair(ctx, recipient)
	if err != nil {
		return "", err
	}
	return openEnvelope(kp, env)
}

// openEnvelope decrypts env with the recipient's already resolved key pair.
func openEnvelope(kp crypto.KeyPair, env domain.Envelope) (string, error) {
	peer, err := crypto.ImportPublicKey(env.SenderPublicKey.String())
	if err != nil {
		return "", fmt.Errorf("sender key: %w", err)
	}
	shared, err := crypto.DeriveSharedKey(kp.Private, peer)
	if err != nil {
		return "", err
	}
	defer shared.Wipe()

	return crypto.DecryptMessage(env.Ciphertext, env.Nonce, shared)
}

// Compile-time assertion that Service implements domain.EncryptionService.
var _ domain.EncryptionService = (*Service)(nil)
