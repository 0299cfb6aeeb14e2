package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/manenim/apigate/pkg/api"
	"github.com/manenim/apigate/pkg/auth"
	"github.com/manenim/apigate/pkg/config"
	"github.com/manenim/apigate/pkg/limiter"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:          "apigate",
		Short:        "Rate-limited API gateway with session and CSRF protection",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, debug)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the YAML configuration file")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging and gin debug mode")
	return cmd
}

func run(ctx context.Context, configPath string, debug bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := newLogger(debug)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	if cfg.Auth.JWTSecret == "" {
		secret, err := auth.EphemeralSecret()
		if err != nil {
			return err
		}
		cfg.Auth.JWTSecret = secret
		log.Warn("no JWT secret configured, using an ephemeral one; sessions will not survive a restart")
	}

	recorder := limiter.NewPrometheusRecorder(prometheus.DefaultRegisterer)
	rl := limiter.NewMemoryLimiter(
		limiter.WithRecorder(recorder),
		limiter.WithSweepInterval(cfg.RateLimit.SweepIntervalOrDefault()),
		limiter.WithMaxIdle(cfg.RateLimit.MaxIdleOrDefault()),
	)
	defer rl.Stop()

	server := api.NewServer(log, cfg, rl, debug)

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddress,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening",
			zap.String("addr", cfg.Server.ListenAddress),
			zap.Int64("rate", cfg.RateLimit.Rate),
			zap.Int64("burst", cfg.RateLimit.Burst))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
