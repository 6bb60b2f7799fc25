package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"chatseal/internal/util/memzero"
)

const (
	// The current supported version of the sealed blob format stored on disk.
	sealedFormatVersion = 1
	sealedSaltSize      = 16
)

var (
	// ErrWrongPassphrase is returned when the passphrase is incorrect or the
	// sealed file has been modified.
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted key file")
)

// sealedBlob is the on‑disk JSON structure holding the ciphertext and KDF parameters.
type sealedBlob struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Nonce  []byte `json:"nonce"`
	Cipher []byte `json:"cipher"`
}

// scryptParams are the tunables for key derivation.
type scryptParams struct{ N, R, P int }

func defaultScryptParams() scryptParams { return scryptParams{N: 1 << 15, R: 8, P: 1} }

// valid reports whether p is no more expensive than the defaults. Parameters
// are read back from disk, so anything larger is treated as tampering.
func (p scryptParams) valid() bool {
	limit := defaultScryptParams()
	return p.N > 1 && p.N&(p.N-1) == 0 && p.N <= limit.N &&
		p.R >= 1 && p.R <= limit.R &&
		p.P >= 1 && p.P <= limit.P
}

// seal derives a key from passphrase and encrypts raw into a JSON blob.
// A fresh salt and nonce are drawn on every call; the salt is bound as
// associated data.
func seal(passphrase string, raw []byte, params scryptParams) ([]byte, error) {
	salt := make([]byte, sealedSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt, params.N, params.R, params.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return json.Marshal(sealedBlob{
		V:      sealedFormatVersion,
		Salt:   salt,
		N:      params.N,
		R:      params.R,
		P:      params.P,
		Nonce:  nonce,
		Cipher: aead.Seal(nil, nonce, raw, salt),
	})
}

// unseal opens the JSON blob using a key derived from passphrase.
func unseal(passphrase string, b []byte) ([]byte, error) {
	var bl sealedBlob
	if err := json.Unmarshal(b, &bl); err != nil {
		return nil, fmt.Errorf("decode sealed key file: %w", err)
	}
	if bl.V > sealedFormatVersion {
		return nil, fmt.Errorf("unsupported key file version %d", bl.V)
	}
	if params := (scryptParams{N: bl.N, R: bl.R, P: bl.P}); !params.valid() {
		return nil, fmt.Errorf("%w: scrypt parameters N=%d r=%d p=%d out of range", ErrWrongPassphrase, bl.N, bl.R, bl.P)
	}

	key, err := scrypt.Key([]byte(passphrase), bl.Salt, bl.N, bl.R, bl.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	if len(bl.Nonce) != aead.NonceSize() {
		return nil, ErrWrongPassphrase
	}
	pt, err := aead.Open(nil, bl.Nonce, bl.Cipher, bl.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}
