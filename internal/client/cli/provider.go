package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/pkg/api"
)

func (c *Cli) runProviderSync(ctx context.Context, name string) error {
	provider, err := parseProvider(name)
	if err != nil {
		return err
	}
	if _, err := c.requireAuth(ctx); err != nil {
		return err
	}

	// Локальные изменения должны попасть на сервер до синхронизации с провайдером
	c.afterMutation(ctx)

	res, err := c.remote.SyncProvider(ctx, provider)
	if err != nil {
		return fmt.Errorf("%s sync failed: %w", provider, err)
	}
	if res.Status != "ok" {
		return fmt.Errorf("%s sync failed: %s", provider, res.Error)
	}

	c.io.Printf("✓ %s synchronized: %d pulled, %d pushed, %d deleted\n", provider, res.Pulled, res.Pushed, res.Deleted)
	if res.ConflictCount > 0 {
		c.io.Printf("%d conflict(s) need a decision, see 'tasksync provider conflicts %s'\n", res.ConflictCount, provider)
	}

	if _, err := c.manager.Refresh(ctx, true); err != nil {
		c.io.Printf("Warning: failed to refresh local copy: %v\n", err)
	}
	return nil
}

func (c *Cli) runProviderConflicts(ctx context.Context, name string) error {
	provider, err := parseProvider(name)
	if err != nil {
		return err
	}
	if _, err := c.requireAuth(ctx); err != nil {
		return err
	}

	conflicts, err := c.remote.ListConflicts(ctx, provider)
	if err != nil {
		return fmt.Errorf("failed to list conflicts: %w", err)
	}
	if len(conflicts) == 0 {
		c.io.Println("No pending conflicts.")
		return nil
	}
	for _, conflict := range conflicts {
		if err := templates.ExecuteTemplate(c.io, "conflict", conflict); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cli) runProviderResolve(ctx context.Context, name string, id int64, keep, mergedFile string) error {
	provider, err := parseProvider(name)
	if err != nil {
		return err
	}
	if _, err := c.requireAuth(ctx); err != nil {
		return err
	}

	req := api.ResolveConflictRequest{Resolution: models.ConflictResolution("keep_" + keep)}
	switch keep {
	case "local", "remote":
	case "merge":
		req.Resolution = models.ResolveMerge
		if mergedFile == "" {
			return fmt.Errorf("--merged is required with --keep merge")
		}
		data, err := os.ReadFile(mergedFile)
		if err != nil {
			return fmt.Errorf("failed to read merged data: %w", err)
		}
		if !json.Valid(data) {
			return fmt.Errorf("merged data is not valid JSON")
		}
		req.Merged = data
	default:
		return fmt.Errorf("unknown choice %q: use local, remote or merge", keep)
	}

	if err := c.remote.ResolveConflict(ctx, provider, id, req); err != nil {
		return fmt.Errorf("failed to resolve conflict: %w", err)
	}
	c.io.Println("✓ Conflict resolved")

	if _, err := c.manager.Refresh(ctx, true); err != nil {
		c.io.Printf("Warning: failed to refresh local copy: %v\n", err)
	}
	return nil
}
