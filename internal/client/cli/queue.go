package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	clientsync "github.com/iudanet/tasksync/internal/client/sync"
	"github.com/iudanet/tasksync/internal/models"
)

func (c *Cli) runQueueList(ctx context.Context, verbose bool) error {
	actions, err := c.manager.Queue(ctx)
	if err != nil {
		return fmt.Errorf("failed to read queue: %w", err)
	}
	if len(actions) == 0 {
		c.io.Println("Queue is empty.")
		return nil
	}

	for _, a := range actions {
		if verbose {
			if err := templates.ExecuteTemplate(c.io, "action", a); err != nil {
				return err
			}
			continue
		}
		status := string(a.Status)
		if a.Conflict != nil {
			status = "conflict"
		}
		line := fmt.Sprintf("%s  %-12s %-10s", a.ID, a.Kind, status)
		if a.Error != "" {
			line += "  " + a.Error
		}
		c.io.Println(line)
	}
	return nil
}

// findAction resolves a full id or an unambiguous id prefix
func (c *Cli) findAction(ctx context.Context, idOrPrefix string) (*models.PendingAction, error) {
	actions, err := c.manager.Queue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue: %w", err)
	}

	if id, err := uuid.Parse(idOrPrefix); err == nil {
		for _, a := range actions {
			if a.ID == id {
				return a, nil
			}
		}
		return nil, fmt.Errorf("action not found: %s", idOrPrefix)
	}

	var found *models.PendingAction
	for _, a := range actions {
		if strings.HasPrefix(a.ID.String(), idOrPrefix) {
			if found != nil {
				return nil, fmt.Errorf("action id prefix %q is ambiguous", idOrPrefix)
			}
			found = a
		}
	}
	if found == nil {
		return nil, fmt.Errorf("action not found: %s", idOrPrefix)
	}
	return found, nil
}

func (c *Cli) runQueueRetry(ctx context.Context, id string) error {
	action, err := c.findAction(ctx, id)
	if err != nil {
		return err
	}
	if err := c.manager.Retry(ctx, action.ID); err != nil {
		if errors.Is(err, clientsync.ErrActionNotFailed) {
			return fmt.Errorf("action %s is not failed", action.ID)
		}
		return fmt.Errorf("failed to retry action: %w", err)
	}
	c.io.Println("✓ Action queued again")
	c.afterMutation(ctx)
	return nil
}

func (c *Cli) runQueueDismiss(ctx context.Context, id string) error {
	action, err := c.findAction(ctx, id)
	if err != nil {
		return err
	}
	if err := c.manager.Dismiss(ctx, action.ID); err != nil {
		return fmt.Errorf("failed to dismiss action: %w", err)
	}
	c.io.Printf("✓ Action dismissed: %s %s\n", action.Kind, action.ID)
	return nil
}

// runQueueResolve applies a decision to a conflicted action. mergedFile holds
// the JSON object used with --use merge.
func (c *Cli) runQueueResolve(ctx context.Context, id, use, mergedFile string) error {
	action, err := c.findAction(ctx, id)
	if err != nil {
		return err
	}

	resolution := clientsync.Resolution{Choice: clientsync.ConflictChoice(use)}
	switch resolution.Choice {
	case clientsync.ChooseServer, clientsync.ChooseLocal:
	case clientsync.ChooseMerge:
		if mergedFile == "" {
			return fmt.Errorf("--merged is required with --use merge")
		}
		data, err := os.ReadFile(mergedFile)
		if err != nil {
			return fmt.Errorf("failed to read merged data: %w", err)
		}
		resolution.Merged = data
	default:
		return fmt.Errorf("unknown choice %q: use server, local or merge", use)
	}

	if err := c.manager.ResolveConflict(ctx, action.ID, resolution); err != nil {
		if errors.Is(err, clientsync.ErrNoConflict) {
			return fmt.Errorf("action %s has no conflict", action.ID)
		}
		return fmt.Errorf("failed to resolve conflict: %w", err)
	}

	c.io.Println("✓ Conflict resolved")
	if resolution.Choice != clientsync.ChooseServer {
		c.afterMutation(ctx)
	}
	return nil
}
