package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runLogin(ctx context.Context, sources TokenSources) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	token, err := c.getToken(sources)
	if err != nil {
		return err
	}

	authData, err := c.authService.Login(ctx, token)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	c.io.Println("✓ Login successful!")
	c.io.Printf("Username: %s\n", authData.Username)
	c.io.Printf("User ID:  %d\n", authData.UserID)
	if authData.ExpiresAt != 0 {
		c.io.Printf("Token expires: %s\n", time.Unix(authData.ExpiresAt, 0).Format(time.RFC3339))
	}
	return nil
}
