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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doc-translator/backend/internal/api"
	"github.com/doc-translator/backend/internal/api/middleware"
	"github.com/doc-translator/backend/internal/auth"
	"github.com/doc-translator/backend/internal/config"
	"github.com/doc-translator/backend/internal/db"
	"github.com/doc-translator/backend/internal/dictionary"
	"github.com/doc-translator/backend/internal/logger"
	"github.com/doc-translator/backend/internal/session"
	"github.com/doc-translator/backend/internal/settings"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if cfg.JWTSecretGenerated {
		log.Warn("JWT_SECRET not set, using a random secret; tokens will not survive a restart")
	}

	if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	database, err := db.NewSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	created, err := database.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("ensure admin user: %w", err)
	}
	if created {
		log.Info("admin user created", zap.String("username", cfg.AdminUsername))
	}

	policy, err := dictionary.ParsePolicy(cfg.DictExtraFields)
	if err != nil {
		return err
	}
	defaults, err := settings.LoadDefaults(cfg.SettingsDefaultsFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := session.NewStore(session.Config{
		IdleTTL:          cfg.SessionIdleTTL,
		DictPolicy:       policy,
		Defaults:         defaults,
		ProgressStep:     cfg.ProgressStep,
		ProgressInterval: cfg.ProgressInterval,
	}, log)
	defer sessions.Close()
	go sessions.Run(ctx, sweepInterval)

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	limiter := middleware.NewRateLimiter(ctx, cfg.LoginRateLimit, time.Minute)
	router := api.NewRouter(cfg, database, jwtService, sessions, limiter, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("db", cfg.DBPath),
			zap.String("dict_extra_fields", string(policy)),
			zap.Duration("progress_interval", cfg.ProgressInterval),
			zap.Int("progress_step", cfg.ProgressStep),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
