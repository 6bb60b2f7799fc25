package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"chatseal/internal/domain"
)

const keyPairsSchema = `
CREATE TABLE IF NOT EXISTS key_pairs (
  user_id     TEXT PRIMARY KEY,
  public_key  TEXT NOT NULL,
  private_key TEXT NOT NULL,
  created_at  TIMESTAMP NOT NULL
);`

// SQLiteKeyStore keeps key pairs in a key_pairs table.
type SQLiteKeyStore struct {
	db *sql.DB
}

var _ domain.KeyStore = (*SQLiteKeyStore)(nil)

// OpenSQLiteKeyStore opens (or creates) the database at path and ensures the
// schema exists.
func OpenSQLiteKeyStore(ctx context.Context, path string) (*SQLiteKeyStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases coherent and serialises
	// writers.
	db.SetMaxOpenConns(1)

	s, err := NewSQLiteKeyStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteKeyStore wraps an existing handle and creates the table if needed.
func NewSQLiteKeyStore(ctx context.Context, db *sql.DB) (*SQLiteKeyStore, error) {
	if _, err := db.ExecContext(ctx, keyPairsSchema); err != nil {
		return nil, fmt.Errorf("create key_pairs: %w", err)
	}
	return &SQLiteKeyStore{db: db}, nil
}

func (s *SQLiteKeyStore) Get(ctx context.Context, user domain.UserID) (domain.SerializedKeyPair, bool, error) {
	var p domain.SerializedKeyPair
	err := s.db.QueryRowContext(ctx,
		`SELECT public_key, private_key FROM key_pairs WHERE user_id = ?`,
		string(user),
	).Scan(&p.PublicKey, &p.PrivateKey)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SerializedKeyPair{}, false, nil
	}
	if err != nil {
		return domain.SerializedKeyPair{}, false, fmt.Errorf("select key pair: %w", err)
	}
	return p, true, nil
}

func (s *SQLiteKeyStore) Set(ctx context.Context, user domain.UserID, pair domain.SerializedKeyPair) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO key_pairs (user_id, public_key, private_key, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
  public_key  = excluded.public_key,
  private_key = excluded.private_key,
  created_at  = excluded.created_at`,
		string(user), pair.PublicKey, pair.PrivateKey, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert key pair: %w", err)
	}
	return nil
}

func (s *SQLiteKeyStore) Delete(ctx context.Context, user domain.UserID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM key_pairs WHERE user_id = ?`, string(user)); err != nil {
		return fmt.Errorf("delete key pair: %w", err)
	}
	return nil
}

func (s *SQLiteKeyStore) Close() error { return s.db.Close() }
