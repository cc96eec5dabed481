package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runLogout(ctx context.Context) error {
	queued, err := c.manager.Queue(ctx)
	if err != nil {
		return fmt.Errorf("failed to read queue: %w", err)
	}

	if err := c.authService.Logout(ctx); err != nil {
		return err
	}

	c.io.Println("✓ Logged out")
	if len(queued) > 0 {
		// Очередь не удаляется: после повторного входа она будет доставлена
		c.io.Printf("%d queued action(s) kept for the next login.\n", len(queued))
	}
	return nil
}
