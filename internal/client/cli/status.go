package cli

import (
	"context"
	"fmt"
	"time"

	clientsync "github.com/iudanet/tasksync/internal/client/sync"
	"github.com/iudanet/tasksync/internal/models"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Status ===")
	c.io.Println()

	isAuth, err := c.authService.IsAuthenticated(ctx)
	if err != nil {
		return fmt.Errorf("failed to check authentication: %w", err)
	}
	if !isAuth {
		c.io.Println("Status: Not authenticated")
		c.io.Println("Run 'tasksync login' to authenticate.")
	} else {
		authData, err := c.authService.Current(ctx)
		if err != nil {
			return fmt.Errorf("failed to get auth data: %w", err)
		}
		c.io.Println("Status: Authenticated")
		c.io.Printf("Username: %s\n", authData.Username)
		if authData.ExpiresAt != 0 {
			expiresAt := time.Unix(authData.ExpiresAt, 0)
			c.io.Printf("Token expires: %s (in %s)\n", expiresAt.Format(time.RFC3339), time.Until(expiresAt).Round(time.Second))
		}
	}

	queued, err := c.manager.Queue(ctx)
	if err != nil {
		return fmt.Errorf("failed to read queue: %w", err)
	}
	var pending, failed, conflicts int
	for _, a := range queued {
		switch {
		case a.Conflict != nil:
			conflicts++
		case a.Status == models.ActionFailed:
			failed++
		default:
			pending++
		}
	}

	c.io.Println()
	if len(queued) == 0 {
		c.io.Println("✓ All changes delivered to the server")
	} else {
		c.io.Printf("Queued: %d pending, %d failed, %d conflict(s)\n", pending, failed, conflicts)
		c.io.Println("Run 'tasksync sync' to deliver them, 'tasksync queue' for details.")
	}

	state := c.manager.State()
	if state.State == clientsync.StateError {
		c.io.Printf("Last sync error: %s\n", state.LastError)
	}
	return nil
}
