package app

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"chatseal/internal/crypto"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Duration is a time.Duration read from TOML as a string such as "5s".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// RetryConfig shapes relay client retries.
type RetryConfig struct {
	InitialInterval Duration `toml:"initial_interval"`
	MaxInterval     Duration `toml:"max_interval"`
	MaxElapsed      Duration `toml:"max_elapsed"`
}

// LogConfig selects the log level and encoding ("console" or "json").
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config holds runtime wiring options for building the app.
//
// Values are layered: Defaults, then an optional TOML file (LoadFile), then
// command-line flags applied by the CLI.
type Config struct {
	Home              string      `toml:"home"`      // data directory, e.g. $HOME/.chatseal
	RelayURL          string      `toml:"relay_url"` // relay base URL, e.g. http://127.0.0.1:8080
	Store             string      `toml:"store"`     // file | sqlite | memory
	Curve             string      `toml:"curve"`     // P-256 | X25519
	RequireEncryption bool        `toml:"require_encryption"`
	HTTPTimeout       Duration    `toml:"http_timeout"`
	Retry             RetryConfig `toml:"retry"`
	Log               LogConfig   `toml:"log"`
	BatchConcurrency  int         `toml:"batch_concurrency"`

	// Passphrase seals the file store; it is never read from the config file.
	Passphrase string `toml:"-"`

	// HTTP overrides the relay's HTTP client, mainly for tests.
	HTTP *http.Client `toml:"-"`
}

// DefaultHome is $HOME/.chatseal, or .chatseal when no home directory is known.
func DefaultHome() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return ".chatseal"
	}
	return filepath.Join(h, ".chatseal")
}

// Defaults returns a Config usable against a local relay.
func Defaults() Config {
	return Config{
		Home:        DefaultHome(),
		RelayURL:    "http://127.0.0.1:8080",
		Store:       StoreFile,
		Curve:       crypto.P256.String(),
		HTTPTimeout: Duration{10 * time.Second},
		Retry: RetryConfig{
			InitialInterval: Duration{250 * time.Millisecond},
			MaxInterval:     Duration{2 * time.Second},
			MaxElapsed:      Duration{10 * time.Second},
		},
		Log:              LogConfig{Level: "warn", Format: "console"},
		BatchConcurrency: 8,
	}
}

// LoadFile overlays the TOML file at path onto cfg. Keys the file does not
// set keep their current values; unknown keys are an error.
func LoadFile(path string, cfg Config) (Config, error) {
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		keys := make([]string, len(undec))
		for i, k := range undec {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Validate checks that the configuration can be wired.
func (c Config) Validate() error {
	var errs []error
	if c.Home == "" && c.Store != StoreMemory {
		errs = append(errs, errors.New("home must be set"))
	}
	switch c.Store {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store %q (want file, sqlite or memory)", c.Store))
	}
	if _, err := crypto.ParseCurve(c.Curve); err != nil {
		errs = append(errs, err)
	}
	if c.BatchConcurrency < 0 {
		errs = append(errs, errors.New("batch_concurrency must not be negative"))
	}
	return errors.Join(errs...)
}
