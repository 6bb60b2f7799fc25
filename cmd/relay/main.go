package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chatseal/internal/logging"
	"chatseal/internal/relay"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		addr      string
		redisURL  string
		logLevel  string
		logFormat string
	)
	cmd := &cobra.Command{
		Use:          "relay",
		Short:        "Run the chatseal relay server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(logLevel, logFormat)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			var backend relay.Backend = relay.NewMemoryBackend()
			if redisURL != "" {
				rb, err := relay.NewRedisBackend(redisURL)
				if err != nil {
					return err
				}
				defer rb.Close()
				backend = rb
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, addr, relay.NewServer(backend, log), log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisURL, "redis", os.Getenv("CHATSEAL_REDIS_URL"), "redis URL; empty keeps state in memory")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	cmd.Flags().StringVar(&logFormat, "log-format", "console", "console or json")
	return cmd
}

func serve(ctx context.Context, addr string, h http.Handler, log logging.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Info(ctx, "relay listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info(context.Background(), "relay shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
