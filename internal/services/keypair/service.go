package keypair

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"chatseal/internal/crypto"
	"chatseal/internal/domain"
	"chatseal/internal/logging"
)

var (
	// ErrEmptyUserID is returned when a key pair is requested without a user.
	ErrEmptyUserID = errors.New("user id is empty")

	// ErrNoDirectory is returned by Publish when no key directory is configured.
	ErrNoDirectory = errors.New("no key directory configured")
)

// Service obtains key pairs from the store, generating and persisting them on
// first use.
type Service struct {
	store     domain.KeyStore
	directory domain.KeyDirectory
	curve     crypto.Curve
	log       logging.Logger

	// group collapses concurrent first-use creation per user.
	group singleflight.Group
}

// New returns a key pair service. directory may be nil when publishing is not
// needed; curve selects the suite for newly generated pairs.
func New(
	store domain.KeyStore,
	directory domain.KeyDirectory,
	curve crypto.Curve,
	log logging.Logger,
) *Service {
	return &Service{store: store, directory: directory, curve: curve, log: log}
}

// GetOrCreateKeyPair returns the user's stored pair, or generates and stores
// a new one when none exists.
//
// A stored pair that cannot be imported is an error; it is never replaced
// implicitly.
func (s *Service) GetOrCreateKeyPair(ctx context.Context, user domain.UserID) (crypto.KeyPair, error) {
	if user == "" {
		return crypto.KeyPair{}, ErrEmptyUserID
	}
	if kp, ok, err := s.load(ctx, user); err != nil || ok {
		return kp, err
	}

	v, err, _ := s.group.Do(string(user), func() (any, error) {
		// Re-check under the flight; an earlier flight may have just stored one.
		if kp, ok, err := s.load(ctx, user); err != nil || ok {
			return kp, err
		}
		return s.create(ctx, user)
	})
	if err != nil {
		return crypto.KeyPair{}, err
	}
	return v.(crypto.KeyPair), nil
}

// ExportKey returns the public snapshot for pub.
func (s *Service) ExportKey(pub crypto.PublicKey) (domain.PublicKeySnapshot, error) {
	j, err := crypto.ExportPublicKey(pub)
	if err != nil {
		return "", err
	}
	return domain.PublicKeySnapshot(j), nil
}

// ResetKeyPair deletes the user's stored pair. The next GetOrCreateKeyPair
// generates a fresh one.
func (s *Service) ResetKeyPair(ctx context.Context, user domain.UserID) error {
	if user == "" {
		return ErrEmptyUserID
	}
	if err := s.store.Delete(ctx, user); err != nil {
		return fmt.Errorf("delete key pair for %q: %w", user, err)
	}
	s.log.Info(ctx, "key pair reset", "user", user)
	return nil
}

// RotateKeyPair replaces the user's pair with a newly generated one.
// Messages encrypted to the old public key can no longer be decrypted.
func (s *Service) RotateKeyPair(ctx context.Context, user domain.UserID) (crypto.KeyPair, error) {
	if err := s.ResetKeyPair(ctx, user); err != nil {
		return crypto.KeyPair{}, err
	}
	return s.GetOrCreateKeyPair(ctx, user)
}

// Publish ensures the user has a key pair and pushes its public half to the
// directory.
func (s *Service) Publish(ctx context.Context, user domain.UserID) (domain.PublicKeySnapshot, error) {
	if s.directory == nil {
		return "", ErrNoDirectory
	}
	kp, err := s.GetOrCreateKeyPair(ctx, user)
	if err != nil {
		return "", err
	}
	snap, err := s.ExportKey(kp.Public)
	if err != nil {
		return "", err
	}
	if err := s.directory.PublishPublicKey(ctx, user, snap); err != nil {
		return "", fmt.Errorf("publish public key: %w", err)
	}
	s.log.Info(ctx, "published public key",
		"user", user,
		"fingerprint", crypto.Fingerprint(kp.Public),
	)
	return snap, nil
}

// Fingerprint returns a short hex fingerprint of the user's public key.
func (s *Service) Fingerprint(ctx context.Context, user domain.UserID) (domain.Fingerprint, error) {
	kp, err := s.GetOrCreateKeyPair(ctx, user)
	if err != nil {
		return "", err
	}
	return domain.Fingerprint(crypto.Fingerprint(kp.Public)), nil
}

func (s *Service) load(ctx context.Context, user domain.UserID) (crypto.KeyPair, bool, error) {
	stored, ok, err := s.store.Get(ctx, user)
	if err != nil {
		return crypto.KeyPair{}, false, fmt.Errorf("load key pair for %q: %w", user, err)
	}
	if !ok {
		return crypto.KeyPair{}, false, nil
	}
	if stored.Empty() {
		return crypto.KeyPair{}, false, fmt.Errorf("stored key pair for %q: %w", user, crypto.ErrMalformedKey)
	}
	kp, err := crypto.ImportKeyPair(stored.PublicKey, stored.PrivateKey)
	if err != nil {
		return crypto.KeyPair{}, false, fmt.Errorf("stored key pair for %q: %w", user, err)
	}
	return kp, true, nil
}

func (s *Service) create(ctx context.Context, user domain.UserID) (crypto.KeyPair, error) {
	kp, err := crypto.GenerateKeyPair(s.curve)
	if err != nil {
		return crypto.KeyPair{}, err
	}
	pub, err := crypto.ExportPublicKey(kp.Public)
	if err != nil {
		return crypto.KeyPair{}, fmt.Errorf("%w: export public: %v", crypto.ErrKeyGeneration, err)
	}
	priv, err := crypto.ExportPrivateKey(kp.Private)
	if err != nil {
		return crypto.KeyPair{}, fmt.Errorf("%w: export private: %v", crypto.ErrKeyGeneration, err)
	}
	if err := s.store.Set(ctx, user, domain.SerializedKeyPair{PublicKey: pub, PrivateKey: priv}); err != nil {
		return crypto.KeyPair{}, fmt.Errorf("store key pair for %q: %w", user, err)
	}
	s.log.Info(ctx, "generated key pair",
		"user", user,
		"curve", kp.Public.Curve,
		"fingerprint", crypto.Fingerprint(kp.Public),
	)
	return kp, nil
}

// Compile-time assertion that Service implements domain.KeyPairService.
var _ domain.KeyPairService = (*Service)(nil)
