package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"chatseal/internal/domain"
	"chatseal/internal/util/memzero"
)

const (
	plainKeyFile  = "keypairs.json"
	sealedKeyFile = "keypairs.enc"
)

// KeyFileStore keeps every local user's key pair in one file under dir.
// With a passphrase the file is sealed (keypairs.enc); without one it is
// plain JSON (keypairs.json) readable only by the owner.
//
// The file is read (and unsealed) once; later calls are served from memory
// and every write replaces both the file and the cached contents. The store
// assumes it is the only writer of its file.
type KeyFileStore struct {
	mu         sync.Mutex
	path       string
	passphrase string
	params     scryptParams

	// cache is nil until the file has been loaded.
	cache map[domain.UserID]domain.SerializedKeyPair
}

var _ domain.KeyStore = (*KeyFileStore)(nil)

// NewKeyFileStore returns a store rooted at dir. The file is created on the
// first Set.
func NewKeyFileStore(dir, passphrase string) *KeyFileStore {
	name := plainKeyFile
	if passphrase != "" {
		name = sealedKeyFile
	}
	return &KeyFileStore{
		path:       filepath.Join(dir, name),
		passphrase: passphrase,
		params:     defaultScryptParams(),
	}
}

// Path is the file backing the store.
func (s *KeyFileStore) Path() string { return s.path }

func (s *KeyFileStore) Get(_ context.Context, user domain.UserID) (domain.SerializedKeyPair, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return domain.SerializedKeyPair{}, false, err
	}
	p, ok := all[user]
	return p, ok, nil
}

func (s *KeyFileStore) Set(_ context.Context, user domain.UserID, pair domain.SerializedKeyPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	next := clonePairs(all)
	next[user] = pair
	return s.save(next)
}

func (s *KeyFileStore) Delete(_ context.Context, user domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := all[user]; !ok {
		return nil
	}
	next := clonePairs(all)
	delete(next, user)
	return s.save(next)
}

// load returns the cached contents, reading the file on first use. The
// returned map must not be modified.
func (s *KeyFileStore) load() (map[domain.UserID]domain.SerializedKeyPair, error) {
	if s.cache != nil {
		return s.cache, nil
	}
	all := make(map[domain.UserID]domain.SerializedKeyPair)
	b, err := readFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(b) == 0 {
		s.cache = all
		return all, nil
	}
	if s.passphrase != "" {
		if b, err = unseal(s.passphrase, b); err != nil {
			return nil, err
		}
		defer memzero.Zero(b)
	}
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	s.cache = all
	return all, nil
}

func (s *KeyFileStore) save(all map[domain.UserID]domain.SerializedKeyPair) error {
	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	if s.passphrase != "" {
		raw := b
		b, err = seal(s.passphrase, raw, s.params)
		memzero.Zero(raw)
		if err != nil {
			return err
		}
	}
	if err := writeFile(s.path, b, 0o600); err != nil {
		return err
	}
	s.cache = all
	return nil
}

func clonePairs(m map[domain.UserID]domain.SerializedKeyPair) map[domain.UserID]domain.SerializedKeyPair {
	out := make(map[domain.UserID]domain.SerializedKeyPair, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
