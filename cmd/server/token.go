package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/tasksync/internal/config"
	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/handlers"
	"github.com/iudanet/tasksync/internal/server/storage"
	"github.com/iudanet/tasksync/internal/validation"
)

func newTokenCmd(cfg *config.ServerConfig) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <username>",
		Short: "Issue a bearer token, creating the user if needed",
		Long: "Issue a bearer token for the CLI. The user is created on first use.\n" +
			"Pass the token to `tasksync login`.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()

			jwtConfig := handlers.JWTConfig{Secret: []byte(cfg.JWTSecret), AccessTokenTTL: cfg.JWTAccessTTL}
			if cmd.Flags().Changed("ttl") {
				jwtConfig.AccessTokenTTL = ttl
			}
			return issueToken(cmd.Context(), a.store, jwtConfig, args[0], cmd.OutOrStdout())
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, 0 for a token without expiry (default jwt_access_ttl)")
	return cmd
}

// issueToken finds or creates the user and prints a signed token
func issueToken(ctx context.Context, users storage.UserStorage, jwtConfig handlers.JWTConfig, username string, out io.Writer) error {
	username = validation.NormalizeUsername(username)
	if err := validation.ValidateUsername(username); err != nil {
		return err
	}

	user, err := getOrCreateUser(ctx, users, username)
	if err != nil {
		return err
	}

	token, expiresAt, err := handlers.GenerateAccessToken(jwtConfig, user.ID, user.Username)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, token)
	if !expiresAt.IsZero() {
		fmt.Fprintf(out, "# user %s (id %d), expires %s\n", user.Username, user.ID, expiresAt.UTC().Format(time.RFC3339))
	} else {
		fmt.Fprintf(out, "# user %s (id %d), no expiry\n", user.Username, user.ID)
	}
	return nil
}

func getOrCreateUser(ctx context.Context, users storage.UserStorage, username string) (*models.User, error) {
	user, err := users.GetUserByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user, err = users.CreateUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
