package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iudanet/tasksync/internal/client/api"
	"github.com/iudanet/tasksync/internal/client/auth"
	"github.com/iudanet/tasksync/internal/client/cli"
	"github.com/iudanet/tasksync/internal/client/iocli"
	"github.com/iudanet/tasksync/internal/client/lock"
	"github.com/iudanet/tasksync/internal/client/queue"
	"github.com/iudanet/tasksync/internal/client/storage"
	"github.com/iudanet/tasksync/internal/client/storage/boltdb"
	clientsync "github.com/iudanet/tasksync/internal/client/sync"
	"github.com/iudanet/tasksync/internal/client/tasks"
	"github.com/iudanet/tasksync/internal/config"
	"github.com/iudanet/tasksync/internal/logging"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// app holds everything opened for one command run
type app struct {
	store     *boltdb.Storage
	manager   clientsync.Manager
	logCloser io.Closer
}

func (a *app) open(ctx context.Context, cfg *config.ClientConfig, c *cli.Cli) error {
	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.logCloser = closer

	// Открываем BoltDB storage
	a.store, err = boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Создаем API клиент с сохраненным токеном
	apiClient := api.NewClient(cfg.ServerURL)
	saved, err := a.store.GetAuth(ctx)
	switch {
	case err == nil:
		apiClient.SetToken(saved.Token)
	case !errors.Is(err, storage.ErrAuthNotFound):
		return fmt.Errorf("failed to load auth data: %w", err)
	}

	managerCfg := clientsync.DefaultConfig()
	managerCfg.Flush = queue.Config{MaxBatch: cfg.FlushMaxBatch, IdleDelay: cfg.FlushIdle}
	managerCfg.StaleAfter = cfg.StaleAfter
	managerCfg.LockTTL = cfg.LockTTL
	if managerCfg.LockTTL <= api.DefaultTimeout {
		// Аренда должна пережить самый долгий запрос
		logger.Warn("lock_ttl is not above the request timeout, using default",
			"lock_ttl", cfg.LockTTL, "request_timeout", api.DefaultTimeout)
		managerCfg.LockTTL = lock.DefaultTTL
	}

	a.manager = clientsync.NewManager(a.store, apiClient, apiClient, managerCfg, logger)
	if err := a.manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start sync manager: %w", err)
	}

	authService := auth.NewService(a.store, apiClient, logger)
	*c = *cli.New(iocli.NewStdio(), authService, tasks.NewService(a.manager), a.manager, apiClient)
	return nil
}

func (a *app) close() {
	if a.manager != nil {
		// Close сбрасывает буфер очереди на диск
		if err := a.manager.Close(context.Background()); err != nil {
			slog.Error("failed to stop sync manager", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

func newRootCmd(v *viper.Viper, a *app) *cobra.Command {
	var configFile string
	// Команды строятся до разбора флагов; зависимости заполняются в PersistentPreRunE
	c := &cli.Cli{}

	root := &cobra.Command{
		Use:           "tasksync",
		Short:         "Offline-first task manager client",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadClient(v, configFile)
			if err != nil {
				return err
			}
			return a.open(cmd.Context(), cfg, c)
		},
	}
	root.SetVersionTemplate(versionString())

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "path to a YAML config file")
	flags.String("server", "http://localhost:8080", "server URL")
	flags.String("db", "tasksync-client.db", "path to local database")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	_ = v.BindPFlag("server_url", flags.Lookup("server"))
	_ = v.BindPFlag("db_path", flags.Lookup("db"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))

	root.AddCommand(c.Commands()...)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := &app{}
	err := newRootCmd(config.New(), a).ExecuteContext(ctx)
	a.close()
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionString() string {
	return fmt.Sprintf("tasksync client\nVersion:    %s\nBuild Date: %s\nGit Commit: %s\n", Version, BuildDate, GitCommit)
}
