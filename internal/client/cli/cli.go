// Package cli implements the tasksync client commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/iudanet/tasksync/internal/client/auth"
	"github.com/iudanet/tasksync/internal/client/iocli"
	"github.com/iudanet/tasksync/internal/client/storage"
	clientsync "github.com/iudanet/tasksync/internal/client/sync"
	"github.com/iudanet/tasksync/internal/client/tasks"
	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/pkg/api"
)

// TokenEnv is the environment variable consulted first for the bearer token
const TokenEnv = "TASKSYNC_TOKEN"

//go:generate moq -out remote_mock.go . Remote

// Remote is the part of the server API used directly by commands
type Remote interface {
	SyncProvider(ctx context.Context, provider models.Provider) (*api.ProviderSyncResponse, error)
	ListConflicts(ctx context.Context, provider models.Provider) ([]*models.ExternalSyncConflict, error)
	ResolveConflict(ctx context.Context, provider models.Provider, id int64, req api.ResolveConflictRequest) error
}

// TokenSources lists where login may take the token from
type TokenSources struct {
	FromFile string
	FromArgs string
}

type Cli struct {
	io          iocli.IO
	authService auth.Service
	tasks       tasks.Service
	manager     clientsync.Manager
	remote      Remote
}

func New(io iocli.IO, authService auth.Service, taskService tasks.Service, manager clientsync.Manager, remote Remote) *Cli {
	return &Cli{
		io:          io,
		authService: authService,
		tasks:       taskService,
		manager:     manager,
		remote:      remote,
	}
}

// getToken retrieves the bearer token from various sources with priority:
// 1. Environment variable TASKSYNC_TOKEN
// 2. File given by --token-file
// 3. Command-line parameter --token
// 4. Interactive prompt (fallback)
func (c *Cli) getToken(sources TokenSources) (string, error) {
	// Priority 1: Environment variable
	if envToken := os.Getenv(TokenEnv); envToken != "" {
		return strings.TrimSpace(envToken), nil
	}

	// Priority 2: File
	if sources.FromFile != "" {
		content, err := os.ReadFile(sources.FromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read token file: %w", err)
		}
		token := strings.TrimSpace(string(content))
		if token == "" {
			return "", fmt.Errorf("token file is empty")
		}
		return token, nil
	}

	// Priority 3: CLI parameter
	if sources.FromArgs != "" {
		return sources.FromArgs, nil
	}

	// Priority 4: Interactive prompt (fallback)
	token, err := c.io.ReadSecret("Token: ")
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	if token == "" {
		return "", fmt.Errorf("token cannot be empty")
	}
	return token, nil
}

// requireAuth returns the saved session or an error telling the user to log in
func (c *Cli) requireAuth(ctx context.Context) (*storage.AuthData, error) {
	ok, err := c.authService.IsAuthenticated(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check authentication: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("not authenticated. Please run 'tasksync login' first")
	}
	return c.authService.Current(ctx)
}

// afterMutation tries to deliver what was just queued. Being offline is not
// an error: the action stays queued until the next sync.
func (c *Cli) afterMutation(ctx context.Context) {
	res, err := c.manager.ProcessQueue(ctx)
	switch {
	case err != nil:
		c.io.Printf("Queued offline: %v\n", err)
	case res.Skipped:
		c.io.Println("Queued; another tasksync process is syncing.")
	case res.StoppedAt != nil:
		c.io.Printf("Queued; delivery stopped at action %s. See 'tasksync queue'.\n", res.StoppedAt)
	case res.Conflicts > 0:
		c.io.Printf("Saved with %d conflict(s). See 'tasksync queue'.\n", res.Conflicts)
	}
}

// parseRef accepts a server id or a temporary ref
func parseRef(s string) (models.Ref, error) {
	ref, err := models.ParseRef(strings.TrimSpace(s))
	if err != nil {
		return models.Ref{}, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ref, nil
}

// parseDue accepts a calendar day (2006-01-02) or an RFC 3339 time.
// Reports whether the value carries a time of day.
func parseDue(s string) (time.Time, bool, error) {
	if day, err := time.Parse(time.DateOnly, s); err == nil {
		return day, false, nil
	}
	at, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid due %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return at.UTC(), true, nil
}

func parseProvider(s string) (models.Provider, error) {
	p := models.Provider(strings.ToLower(s))
	if !p.Valid() {
		return "", fmt.Errorf("unknown provider %q: use google or todoist", s)
	}
	return p, nil
}

// notFound shortens ErrNotFound to a user-facing message
func notFound(err error, what, ref string) error {
	if errors.Is(err, tasks.ErrNotFound) {
		return fmt.Errorf("%s not found: %s", what, ref)
	}
	return err
}
