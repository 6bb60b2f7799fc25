package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"chatseal/internal/domain"
)

var alicePair = domain.SerializedKeyPair{PublicKey: `{"kty":"EC","x":"a"}`, PrivateKey: `{"kty":"EC","d":"a"}`}
var bobPair = domain.SerializedKeyPair{PublicKey: `{"kty":"EC","x":"b"}`, PrivateKey: `{"kty":"EC","d":"b"}`}

func fastFileStore(dir, passphrase string) *KeyFileStore {
	s := NewKeyFileStore(dir, passphrase)
	s.params = scryptParams{N: 1 << 10, R: 8, P: 1}
	return s
}

func openSQLite(t *testing.T) *SQLiteKeyStore {
	t.Helper()
	s, err := OpenSQLiteKeyStore(context.Background(), filepath.Join(t.TempDir(), "keys.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func eachStore(t *testing.T, fn func(t *testing.T, s domain.KeyStore)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryKeyStore()) })
	t.Run("file", func(t *testing.T) { fn(t, fastFileStore(t.TempDir(), "")) })
	t.Run("sealed file", func(t *testing.T) { fn(t, fastFileStore(t.TempDir(), "hunter2")) })
	t.Run("sqlite", func(t *testing.T) { fn(t, openSQLite(t)) })
}

func TestKeyStore_Contract(t *testing.T) {
	eachStore(t, func(t *testing.T, s domain.KeyStore) {
		ctx := context.Background()

		_, ok, err := s.Get(ctx, "alice")
		require.NoError(t, err)
		require.False(t, ok)

		require.NoError(t, s.Set(ctx, "alice", alicePair))
		require.NoError(t, s.Set(ctx, "bob", bobPair))

		got, ok, err := s.Get(ctx, "alice")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, alicePair, got)

		// last write wins
		require.NoError(t, s.Set(ctx, "alice", bobPair))
		got, _, err = s.Get(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, bobPair, got)

		require.NoError(t, s.Delete(ctx, "alice"))
		_, ok, err = s.Get(ctx, "alice")
		require.NoError(t, err)
		require.False(t, ok)

		// users are isolated and Delete of an absent entry is a no-op
		require.NoError(t, s.Delete(ctx, "alice"))
		got, ok, err = s.Get(ctx, "bob")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, bobPair, got)
	})
}

func TestKeyStore_ConcurrentSet(t *testing.T) {
	eachStore(t, func(t *testing.T, s domain.KeyStore) {
		ctx := context.Background()
		users := []domain.UserID{"u1", "u2", "u3", "u4", "u5", "u6"}

		var wg sync.WaitGroup
		errs := make(chan error, len(users))
		for _, u := range users {
			wg.Add(1)
			go func(u domain.UserID) {
				defer wg.Done()
				errs <- s.Set(ctx, u, alicePair)
			}(u)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		for _, u := range users {
			_, ok, err := s.Get(ctx, u)
			require.NoError(t, err)
			require.True(t, ok, u)
		}
	})
}

func TestKeyFileStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	require.NoError(t, fastFileStore(dir, "").Set(ctx, "alice", alicePair))

	got, ok, err := fastFileStore(dir, "").Get(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, alicePair, got)

	fi, err := os.Stat(filepath.Join(dir, plainKeyFile))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestKeyFileStore_SealedHidesContents(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s := fastFileStore(dir, "correct horse")
	require.NoError(t, s.Set(ctx, "alice", alicePair))

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	require.NotContains(t, string(raw), "privateKey")
	require.NotContains(t, string(raw), alicePair.PrivateKey)

	got, ok, err := fastFileStore(dir, "correct horse").Get(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, alicePair, got)

	_, _, err = fastFileStore(dir, "battery staple").Get(ctx, "alice")
	require.ErrorIs(t, err, ErrWrongPassphrase)
}

func TestKeyFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, plainKeyFile), []byte("{not json"), 0o600))

	_, _, err := fastFileStore(dir, "").Get(context.Background(), "alice")
	require.Error(t, err)
}

func TestKeyFileStore_ReadsFileOnce(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s := fastFileStore(dir, "correct horse")
	require.NoError(t, s.Set(ctx, "alice", alicePair))

	// Later reads must not touch the file; a fresh store sees the damage.
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))
	for i := 0; i < 3; i++ {
		got, ok, err := s.Get(ctx, "alice")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, alicePair, got)
	}
	_, _, err := fastFileStore(dir, "correct horse").Get(ctx, "alice")
	require.Error(t, err)

	// Writes still go through to disk.
	require.NoError(t, s.Set(ctx, "bob", bobPair))
	require.NoError(t, s.Delete(ctx, "alice"))
	fresh := fastFileStore(dir, "correct horse")
	_, ok, err := fresh.Get(ctx, "alice")
	require.NoError(t, err)
	require.False(t, ok)
	got, ok, err := fresh.Get(ctx, "bob")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bobPair, got)
}

func TestSQLiteKeyStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.db")
	ctx := context.Background()

	s, err := OpenSQLiteKeyStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "alice", alicePair))
	require.NoError(t, s.Close())

	s, err = OpenSQLiteKeyStore(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, ok, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, alicePair, got)
}

func TestSealUnseal(t *testing.T) {
	params := scryptParams{N: 1 << 10, R: 8, P: 1}
	a, err := seal("pw", []byte("payload"), params)
	require.NoError(t, err)
	b, err := seal("pw", []byte("payload"), params)
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	pt, err := unseal("pw", a)
	require.NoError(t, err)
	require.Equal(t, "payload", string(pt))

	_, err = unseal("nope", a)
	require.ErrorIs(t, err, ErrWrongPassphrase)
}

func TestUnseal_RejectsOutOfRangeParams(t *testing.T) {
	sealed, err := seal("pw", []byte("payload"), scryptParams{N: 1 << 10, R: 8, P: 1})
	require.NoError(t, err)

	for name, edit := range map[string]func(map[string]any){
		"huge N":     func(m map[string]any) { m["scrypt_N"] = 1 << 30 },
		"N not pow2": func(m map[string]any) { m["scrypt_N"] = 1000 },
		"N one":      func(m map[string]any) { m["scrypt_N"] = 1 },
		"huge r":     func(m map[string]any) { m["scrypt_r"] = 1 << 20 },
		"zero r":     func(m map[string]any) { m["scrypt_r"] = 0 },
		"huge p":     func(m map[string]any) { m["scrypt_p"] = 1 << 20 },
		"negative p": func(m map[string]any) { m["scrypt_p"] = -1 },
	} {
		t.Run(name, func(t *testing.T) {
			var m map[string]any
			require.NoError(t, json.Unmarshal(sealed, &m))
			edit(m)
			b, err := json.Marshal(m)
			require.NoError(t, err)

			_, err = unseal("pw", b)
			require.ErrorIs(t, err, ErrWrongPassphrase)
		})
	}
}
