// Command nd-devserver starts the stub news backend.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/newsdesk/internal/config"
	"github.com/and161185/newsdesk/internal/devserver"
	"github.com/and161185/newsdesk/internal/limiter"
	"github.com/and161185/newsdesk/internal/migrate"
	"github.com/and161185/newsdesk/internal/model"
	"github.com/and161185/newsdesk/internal/repository"
	"github.com/and161185/newsdesk/internal/repository/memory"
	"github.com/and161185/newsdesk/internal/repository/postgres"
	"github.com/and161185/newsdesk/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, prepares storage and serves the API until a signal arrives.
func main() {
	envFile := flag.String("env-file", ".env", "optional .env file")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if err := config.LoadDotEnv(*envFile); err != nil {
		logger.Fatal("load env file", zap.Error(err))
	}
	cfg, err := config.LoadServer()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Users live in postgres when a DSN is set, in memory otherwise.
	var users repository.UserRepository
	if cfg.DSN != "" {
		if err := migrate.Up(ctx, cfg.DSN); err != nil {
			logger.Fatal("migrate up", zap.Error(err))
		}
		db, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			logger.Fatal("postgres", zap.Error(err))
		}
		defer db.Close()
		users = postgres.NewUserRepo(db)
	} else {
		logger.Warn("no DSN configured, users are kept in memory")
		users = memory.NewUserRepo()
	}

	lim := limiter.NewMemory(15*time.Minute, 5, 15*time.Minute)
	authSvc := service.NewAuthService(users, []byte(cfg.JWTKey), service.TTLs{Access: cfg.AccessTTL, Refresh: cfg.RefreshTTL}, lim)

	if cfg.AdminUser != "" {
		if _, err := authSvc.EnsureUser(ctx, cfg.AdminUser, cfg.AdminPass, model.RoleAdmin); err != nil {
			logger.Fatal("seed admin", zap.Error(err))
		}
	}

	content := devserver.NewContent()
	if cfg.Seed {
		content.Seed()
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           devserver.New(authSvc, content, logger, cfg.BasePath),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("base", cfg.BasePath))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown", zap.Error(err))
			_ = srv.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
