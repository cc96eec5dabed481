package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runSync(ctx context.Context, force bool) error {
	if _, err := c.requireAuth(ctx); err != nil {
		return err
	}

	c.io.Println("=== Synchronization ===")
	c.io.Println()

	// Сначала доставляем очередь, затем обновляем снимок сервера
	result, err := c.manager.ProcessQueue(ctx)
	if err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}
	if result.Skipped {
		c.io.Println("Another tasksync process is syncing right now, try again later.")
		return nil
	}

	c.io.Printf("Delivered:  %d action(s)\n", result.Succeeded)
	if len(result.Remapped) > 0 {
		c.io.Printf("New ids:    %d\n", len(result.Remapped))
	}
	if result.Conflicts > 0 {
		c.io.Printf("Conflicts:  %d (resolve with 'tasksync queue resolve')\n", result.Conflicts)
	}
	if result.Deferred > 0 {
		c.io.Printf("Waiting:    %d behind a conflict\n", result.Deferred)
	}
	if result.Discarded > 0 {
		c.io.Printf("Discarded:  %d unknown action(s)\n", result.Discarded)
	}
	if result.StoppedAt != nil {
		c.io.Printf("Stopped at action %s; retry or dismiss it with 'tasksync queue'.\n", result.StoppedAt)
	}

	refreshed, err := c.manager.Refresh(ctx, force)
	if err != nil {
		return fmt.Errorf("failed to refresh from server: %w", err)
	}
	if refreshed {
		c.io.Println("Local copy refreshed from the server.")
	}

	c.io.Println()
	c.io.Println("✓ Synchronization completed")
	return nil
}
