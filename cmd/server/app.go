package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/iudanet/tasksync/internal/config"
	"github.com/iudanet/tasksync/internal/crypto"
	"github.com/iudanet/tasksync/internal/logging"
	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/actions"
	"github.com/iudanet/tasksync/internal/server/credentials"
	"github.com/iudanet/tasksync/internal/server/providers"
	"github.com/iudanet/tasksync/internal/server/providers/google"
	"github.com/iudanet/tasksync/internal/server/providers/todoist"
	"github.com/iudanet/tasksync/internal/server/providersync"
	"github.com/iudanet/tasksync/internal/server/storage/sqlite"
)

// errProvidersDisabled is returned by provider commands when no credentials key is configured
var errProvidersDisabled = errors.New("provider sync is disabled: credentials_key is not configured")

// app holds the components shared by the server commands
type app struct {
	logger    *slog.Logger
	logCloser io.Closer
	store     *sqlite.Storage
	registry  *actions.Registry
	// credStore и engine равны nil, если credentials_key не задан
	credStore *credentials.Store
	engine    *providersync.Engine
}

func openApp(ctx context.Context, cfg *config.ServerConfig) (*app, error) {
	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	a := &app{logger: logger, logCloser: closer}

	// Инициализируем SQLite storage, миграции применяются при открытии
	a.store, err = sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Info("Database initialized", "path", cfg.DBPath)

	a.registry = actions.NewRegistry(a.store, logger)

	if cfg.CredentialsKey == "" {
		logger.Warn("credentials_key is not set, provider sync is disabled")
		return a, nil
	}

	master, err := cfg.CredentialsKeyBytes()
	if err != nil {
		a.close()
		return nil, err
	}
	keyring, err := crypto.NewKeyring(cfg.CredentialsKeyID, master)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create keyring: %w", err)
	}
	logger.Info("Credentials key loaded", "key_id", cfg.CredentialsKeyID, "fingerprint", crypto.Fingerprint(master))

	a.credStore = credentials.NewStore(a.store, keyring, oauthConfigs(cfg), logger)
	a.engine = providersync.NewEngine(a.store, a.credStore, providerFactories(cfg), providersync.Config{Lease: cfg.SyncLease}, logger)
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("failed to close database", "error", err)
		}
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

// oauthConfigs returns refresh endpoints for providers with a configured OAuth client
func oauthConfigs(cfg *config.ServerConfig) map[models.Provider]*oauth2.Config {
	configs := make(map[models.Provider]*oauth2.Config)
	for provider, pc := range map[models.Provider]config.ProviderConfig{
		models.ProviderGoogle:  cfg.Google,
		models.ProviderTodoist: cfg.Todoist,
	} {
		if pc.ClientID == "" {
			continue
		}
		configs[provider] = &oauth2.Config{
			ClientID:     pc.ClientID,
			ClientSecret: pc.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: pc.TokenURL},
		}
	}
	return configs
}

func providerFactories(cfg *config.ServerConfig) map[models.Provider]providers.Factory {
	return map[models.Provider]providers.Factory{
		models.ProviderGoogle:  google.NewFactory(cfg.Google.BaseURL),
		models.ProviderTodoist: todoist.NewFactory(cfg.Todoist.BaseURL),
	}
}
