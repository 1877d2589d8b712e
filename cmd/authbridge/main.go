package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	dodoisadapter "github.com/goretsky-integration/dodo-auth-bridge/internal/adapter/driven/dodois"
	sqliteadapter "github.com/goretsky-integration/dodo-auth-bridge/internal/adapter/driven/sqlite"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/application"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/config"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/domain/model"
	"github.com/goretsky-integration/dodo-auth-bridge/internal/vault"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	once := flag.Bool("once", false, "run one refresh batch and exit instead of scheduling")
	only := flag.String("only", "", "restrict the batch to one kind: sessions or tokens (implies -once)")
	flag.Parse()

	if *only != "" && *only != "sessions" && *only != "tokens" {
		return fmt.Errorf("-only must be sessions or tokens, got %q", *only)
	}

	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"db_path", cfg.DBPath,
		"country_code", cfg.CountryCode,
		"refresh_interval", cfg.RefreshInterval,
		"max_concurrent", cfg.MaxConcurrent,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire the vault and stores.
	v, err := vault.New(cfg.SecretKey)
	if err != nil {
		return err
	}
	accountStore := sqliteadapter.NewAccountRepo(db, v)
	sessionStore := sqliteadapter.NewSessionRepo(db, v)
	tokenStore := sqliteadapter.NewTokenRepo(db, v)

	// 6. Wire the platform clients and services.
	factory := dodoisadapter.NewFactory(
		cfg.AuthBaseURL,
		cfg.OfficeManagerBaseURL,
		cfg.ShiftManagerBaseURL,
		cfg.HTTPTimeout,
	)
	authenticator := application.NewAuthenticator(factory, model.LoginConfig{
		CountryCode:   cfg.CountryCode,
		RememberLogin: true,
	})

	// Token rotation runs only when client credentials are configured.
	var refresher *application.TokenRefresher
	if cfg.HasAPIClientCredentials() {
		tokenClient := dodoisadapter.NewTokenClient(
			cfg.AuthBaseURL,
			cfg.APIClientID,
			cfg.APIClientSecret,
			cfg.HTTPTimeout,
		)
		refresher = application.NewTokenRefresher(tokenClient, tokenStore)
	} else {
		slog.Info("no api client credentials configured, token refresh disabled")
	}

	service := application.NewRefreshService(
		authenticator,
		refresher,
		accountStore,
		sessionStore,
		slog.Default(),
		application.RefreshServiceConfig{
			Interval:      cfg.RefreshInterval,
			MaxConcurrent: cfg.MaxConcurrent,
			MaxAttempts:   cfg.MaxAttempts,
			RetryBackoff:  cfg.RetryBackoff,
		},
	)

	// 7. Run.
	switch *only {
	case "sessions":
		service.RefreshSessions(ctx)
		return nil
	case "tokens":
		service.RefreshTokens(ctx)
		return nil
	}

	if *once {
		service.RunBatch(ctx)
		return nil
	}

	service.Start(ctx)
	return nil
}
