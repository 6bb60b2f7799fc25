package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"chatseal/internal/app"
	"chatseal/internal/domain"
	"chatseal/internal/logging"
)

var (
	configPath    string
	askPassphrase bool
	user          string

	cfg    = app.Defaults()
	log    *logging.ZapLogger
	wire   *app.Wire
	appCtx *app.App
)

func Execute() error {
	root := &cobra.Command{
		Use:          "chatseal",
		Short:        "End-to-end encrypted chat CLI",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return errors.New("--user is required")
			}
			if err := loadConfig(cmd); err != nil {
				return err
			}
			l, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			log = l

			if cfg.Store == app.StoreFile && askPassphrase && cfg.Passphrase == "" {
				p, err := promptPassphrase()
				if err != nil {
					return err
				}
				cfg.Passphrase = p
			}

			w, err := app.NewWire(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			wire = w
			appCtx = w.ForUser(domain.UserID(user))
			return nil
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&configPath, "config", "", "TOML config file")
	f.StringVar(&cfg.Home, "home", cfg.Home, "data dir")
	f.StringVar(&cfg.RelayURL, "relay", cfg.RelayURL, "relay base URL")
	f.StringVar(&cfg.Store, "store", cfg.Store, "key store: file, sqlite or memory")
	f.StringVar(&cfg.Curve, "curve", cfg.Curve, "curve for new key pairs: P-256 or X25519")
	f.BoolVar(&cfg.RequireEncryption, "require-encryption", cfg.RequireEncryption, "refuse to send unencrypted")
	f.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "debug, info, warn or error")
	f.StringVarP(&cfg.Passphrase, "passphrase", "p", "", "passphrase sealing the key file")
	f.BoolVar(&askPassphrase, "ask-passphrase", false, "prompt for the key file passphrase")
	f.StringVarP(&user, "user", "u", os.Getenv("CHATSEAL_USER"), "your user id (or $CHATSEAL_USER)")

	root.AddCommand(
		initCmd(),
		publishCmd(),
		fingerprintCmd(),
		keysCmd(),
		sendCmd(),
		recvCmd(),
	)
	err := root.Execute()
	if wire != nil {
		err = errors.Join(err, wire.Close())
	}
	if log != nil {
		_ = log.Sync()
	}
	return err
}

// loadConfig overlays the TOML file, then re-applies any flag the user set so
// flags win over the file.
func loadConfig(cmd *cobra.Command) error {
	if configPath == "" {
		return cfg.Validate()
	}
	fromFile, err := app.LoadFile(configPath, app.Defaults())
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	keep := func(name string, dst *string, v string) {
		if !flags.Changed(name) {
			*dst = v
		}
	}
	keep("home", &cfg.Home, fromFile.Home)
	keep("relay", &cfg.RelayURL, fromFile.RelayURL)
	keep("store", &cfg.Store, fromFile.Store)
	keep("curve", &cfg.Curve, fromFile.Curve)
	keep("log-level", &cfg.Log.Level, fromFile.Log.Level)
	if !flags.Changed("require-encryption") {
		cfg.RequireEncryption = fromFile.RequireEncryption
	}
	cfg.Log.Format = fromFile.Log.Format
	cfg.HTTPTimeout = fromFile.HTTPTimeout
	cfg.Retry = fromFile.Retry
	cfg.BatchConcurrency = fromFile.BatchConcurrency
	return cfg.Validate()
}

func promptPassphrase() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--ask-passphrase needs a terminal; use -p instead")
	}
	fmt.Fprint(os.Stderr, "Passphrase: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
