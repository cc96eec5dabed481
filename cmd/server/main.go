package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iudanet/tasksync/internal/config"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func newRootCmd(v *viper.Viper) *cobra.Command {
	var configFile string
	// cfg заполняется в PersistentPreRunE, подкоманды читают его через замыкание
	cfg := &config.ServerConfig{}

	root := &cobra.Command{
		Use:           "tasksync-server",
		Short:         "tasksync sync server",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.LoadServer(v, configFile)
			if err != nil {
				return err
			}
			if err := loaded.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			*cfg = *loaded
			return nil
		},
	}
	root.SetVersionTemplate(versionString())

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "path to a YAML config file")
	flags.String("db", "tasksync-server.db", "path to the SQLite database")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")
	_ = v.BindPFlag("db_path", flags.Lookup("db"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))

	root.AddCommand(
		newServeCmd(v, cfg),
		newTokenCmd(cfg),
		newSyncCmd(cfg),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd(config.New()).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionString() string {
	return fmt.Sprintf("tasksync server\nVersion:    %s\nBuild Date: %s\nGit Commit: %s\n", Version, BuildDate, GitCommit)
}
