package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iudanet/tasksync/internal/config"
	"github.com/iudanet/tasksync/internal/server/handlers"
	"github.com/iudanet/tasksync/internal/server/middleware"
	"github.com/iudanet/tasksync/internal/server/providersync"
)

const (
	healthPath      = "/api/v1/health"
	shutdownTimeout = 10 * time.Second
)

func newServeCmd(v *viper.Viper, cfg *config.ServerConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the provider sync scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().String("listen", ":8080", "address to listen on")
	_ = v.BindPFlag("listen_addr", cmd.Flags().Lookup("listen"))
	return cmd
}

// routerDeps are the handlers mounted by newRouter
type routerDeps struct {
	sync      *handlers.SyncHandler
	auth      *handlers.AuthHandler
	health    *handlers.HealthHandler
	providers *handlers.ProviderHandler // nil отключает маршруты провайдеров
}

// newRouter регистрирует маршруты API. Все пути, кроме health check, требуют токен.
func newRouter(deps routerDeps, authMW func(http.Handler) http.Handler) *http.ServeMux {
	api := http.NewServeMux()
	api.HandleFunc("POST /api/v1/actions", deps.sync.Execute)
	api.HandleFunc("GET /api/v1/lists", deps.sync.Lists)
	api.HandleFunc("GET /api/v1/tasks", deps.sync.Tasks)
	api.HandleFunc("GET /api/v1/labels", deps.sync.Labels)
	api.HandleFunc("GET /api/v1/me", deps.auth.Me)

	if deps.providers != nil {
		api.HandleFunc("POST /api/v1/providers/{provider}/sync", deps.providers.Sync)
		api.HandleFunc("GET /api/v1/providers/{provider}/conflicts", deps.providers.Conflicts)
		api.HandleFunc("POST /api/v1/providers/{provider}/conflicts/{id}/resolve", deps.providers.Resolve)
		api.HandleFunc("PUT /api/v1/providers/{provider}/credentials", deps.providers.Link)
		api.HandleFunc("DELETE /api/v1/providers/{provider}/credentials", deps.providers.Unlink)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+healthPath, deps.health.Health)
	mux.Handle("/api/", authMW(api))
	return mux
}

func serve(ctx context.Context, cfg *config.ServerConfig) error {
	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()
	logger := a.logger

	jwtConfig := handlers.JWTConfig{
		Secret:         []byte(cfg.JWTSecret),
		AccessTokenTTL: cfg.JWTAccessTTL,
	}

	deps := routerDeps{
		sync:   handlers.NewSyncHandler(logger, a.registry, a.store),
		auth:   handlers.NewAuthHandler(logger, a.store),
		health: handlers.NewHealthHandler(logger, Version, a.store.DB()),
	}
	if a.engine != nil {
		deps.providers = handlers.NewProviderHandler(logger, a.engine, a.credStore)
	}

	// Ручной sync провайдера дорогой: отдельный строгий лимит
	limiter := middleware.NewPathRateLimiter([]middleware.PathRateLimit{
		{Pattern: "/api/v1/providers/*/sync", Rate: cfg.ProviderRate, Window: cfg.RateWindow},
	}, cfg.RateLimit, cfg.RateWindow, logger)
	defer limiter.Stop()

	// Применяем middleware в порядке: Recovery -> Logging -> RateLimit -> Auth
	var handler http.Handler = newRouter(deps, middleware.Auth(logger, jwtConfig))
	handler = limiter.Middleware(handler)
	handler = middleware.Logging(logger, healthPath)(handler)
	handler = middleware.Recovery(logger)(handler)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	schedulerDone := make(chan struct{})
	if a.engine != nil && cfg.SyncInterval > 0 {
		scheduler := providersync.NewScheduler(a.engine, a.store, cfg.SyncInterval, cfg.SyncConcurrency, logger)
		go func() {
			defer close(schedulerDone)
			scheduler.Run(runCtx)
		}()
	} else {
		close(schedulerDone)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "addr", cfg.ListenAddr, "version", Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		cancel()
		<-schedulerDone
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	<-schedulerDone

	logger.Info("Server stopped")
	return nil
}

