package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/iudanet/tasksync/internal/config"
	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/providersync"
	"github.com/iudanet/tasksync/internal/validation"
)

func newSyncCmd(cfg *config.ServerConfig) *cobra.Command {
	var (
		username string
		provider string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one provider sync pass and exit",
		Long: "Run one provider sync pass. With --user and --provider a single account is synced,\n" +
			"without them every linked account is synced once.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (username == "") != (provider == "") {
				return fmt.Errorf("--user and --provider must be given together")
			}

			ctx := cmd.Context()
			a, err := openApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.close()
			if a.engine == nil {
				return errProvidersDisabled
			}

			if username == "" {
				scheduler := providersync.NewScheduler(a.engine, a.store, cfg.SyncInterval, cfg.SyncConcurrency, a.logger)
				return scheduler.RunOnce(ctx)
			}

			p := models.Provider(provider)
			if !p.Valid() {
				return fmt.Errorf("unknown provider %q", provider)
			}
			user, err := a.store.GetUserByUsername(ctx, validation.NormalizeUsername(username))
			if err != nil {
				return fmt.Errorf("failed to look up user %s: %w", username, err)
			}

			return printOutcome(cmd.OutOrStdout(), a.engine.SyncForUser(ctx, user.ID, p))
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "username of the account to sync")
	cmd.Flags().StringVar(&provider, "provider", "", "provider to sync: google or todoist")
	return cmd
}

func printOutcome(out io.Writer, o *providersync.Outcome) error {
	if o.InProgress() {
		return fmt.Errorf("sync already in progress")
	}
	if o.Status == providersync.StatusError {
		return fmt.Errorf("sync failed: %s", o.Error)
	}
	fmt.Fprintf(out, "pulled %d, pushed %d, deleted %d, conflicts %d\n", o.Pulled, o.Pushed, o.Deleted, o.ConflictCount)
	return nil
}
