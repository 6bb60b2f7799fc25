package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"chatseal/internal/crypto"
	"chatseal/internal/domain"
	"chatseal/internal/logging"
	"chatseal/internal/relay"
	e2esvc "chatseal/internal/services/e2e"
	keypairsvc "chatseal/internal/services/keypair"
	messagesvc "chatseal/internal/services/message"
	"chatseal/internal/store"
)

// ErrNoRelay is returned by App operations that need the relay when no relay
// URL is configured.
var ErrNoRelay = errors.New("no relay configured")

// Wire bundles the store, services, and relay client for the CLI.
type Wire struct {
	Store    domain.KeyStore
	Keys     domain.KeyPairService
	E2E      domain.EncryptionService
	Messages domain.MessageService
	Relay    domain.RelayClient
	Log      logging.Logger

	closers []func() error
}

// NewWire constructs the dependency graph from cfg. Relay-backed services are
// left nil when cfg.RelayURL is empty.
func NewWire(ctx context.Context, cfg Config, log logging.Logger) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	curve, err := crypto.ParseCurve(cfg.Curve)
	if err != nil {
		return nil, err
	}

	w := &Wire{Log: log}

	ks, err := openKeyStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	w.Store = ks
	if c, ok := ks.(interface{ Close() error }); ok {
		w.closers = append(w.closers, c.Close)
	}

	var directory domain.KeyDirectory
	if cfg.RelayURL != "" {
		rc, err := relay.NewClient(relay.ClientConfig{
			BaseURL: cfg.RelayURL,
			Timeout: cfg.HTTPTimeout.Duration,
			Retry: relay.RetryPolicy{
				InitialInterval: cfg.Retry.InitialInterval.Duration,
				MaxInterval:     cfg.Retry.MaxInterval.Duration,
				MaxElapsedTime:  cfg.Retry.MaxElapsed.Duration,
			},
			Log:  log.With("component", "relay"),
			HTTP: cfg.HTTP,
		})
		if err != nil {
			_ = w.Close()
			return nil, err
		}
		w.Relay = rc
		directory = rc
	}

	keys := keypairsvc.New(ks, directory, curve, log.With("component", "keypair"))
	w.Keys = keys
	w.E2E = e2esvc.New(keys, log.With("component", "e2e"), cfg.BatchConcurrency)
	if w.Relay != nil {
		w.Messages = messagesvc.New(w.Relay, w.E2E, log.With("component", "message"), messagesvc.Options{
			RequireEncryption: cfg.RequireEncryption,
		})
	}
	return w, nil
}

// Close releases the key store.
func (w *Wire) Close() error {
	var errs []error
	for i := len(w.closers) - 1; i >= 0; i-- {
		errs = append(errs, w.closers[i]())
	}
	w.closers = nil
	return errors.Join(errs...)
}

func openKeyStore(ctx context.Context, cfg Config) (domain.KeyStore, error) {
	switch cfg.Store {
	case StoreMemory:
		return store.NewMemoryKeyStore(), nil
	case StoreSQLite:
		if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
			return nil, fmt.Errorf("create home %s: %w", cfg.Home, err)
		}
		return store.OpenSQLiteKeyStore(ctx, filepath.Join(cfg.Home, "keys.db"))
	default:
		return store.NewKeyFileStore(cfg.Home, cfg.Passphrase), nil
	}
}
