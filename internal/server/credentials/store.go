// Package credentials keeps provider OAuth tokens sealed at rest and hands
// out token sources that refresh and re-seal them.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"golang.org/x/oauth2"

	"github.com/iudanet/tasksync/internal/crypto"
	"github.com/iudanet/tasksync/internal/models"
	"github.com/iudanet/tasksync/internal/server/storage"
)

// ErrNotLinked is returned when the user has no stored token for a provider
var ErrNotLinked = errors.New("provider account is not linked")

// Store seals tokens with the keyring and persists them in storage.
type Store struct {
	storage storage.CredentialStorage
	keyring *crypto.Keyring
	logger  *slog.Logger
	// configs are the refresh endpoints; a provider without one gets a static source
	configs map[models.Provider]*oauth2.Config
	// mu serializes refresh+persist per process
	mu sync.Mutex
}

// NewStore creates a credential store
func NewStore(st storage.CredentialStorage, keyring *crypto.Keyring, configs map[models.Provider]*oauth2.Config, logger *slog.Logger) *Store {
	return &Store{storage: st, keyring: keyring, configs: configs, logger: logger}
}

// aad binds a sealed token to its owner row
func aad(userID int64, provider models.Provider) []byte {
	return []byte(strconv.FormatInt(userID, 10) + ":" + string(provider))
}

// Save seals and stores tok for (userID, provider)
func (s *Store) Save(ctx context.Context, userID int64, provider models.Provider, tok *oauth2.Token) error {
	if tok == nil || tok.AccessToken == "" {
		return fmt.Errorf("access token cannot be empty")
	}

	binding := aad(userID, provider)
	keyID, access, err := s.keyring.Seal([]byte(tok.AccessToken), binding)
	if err != nil {
		return fmt.Errorf("failed to seal access token: %w", err)
	}

	var refresh []byte
	if tok.RefreshToken != "" {
		if _, refresh, err = s.keyring.Seal([]byte(tok.RefreshToken), binding); err != nil {
			return fmt.Errorf("failed to seal refresh token: %w", err)
		}
	}

	cred := &models.ProviderCredential{
		UserID:             userID,
		Provider:           provider,
		KeyID:              keyID,
		TokenType:          tok.TokenType,
		AccessTokenSealed:  access,
		RefreshTokenSealed: refresh,
		Expiry:             tok.Expiry,
	}
	if err := s.storage.SaveCredential(ctx, cred); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

// Token opens the stored token of (userID, provider)
func (s *Store) Token(ctx context.Context, userID int64, provider models.Provider) (*oauth2.Token, error) {
	cred, err := s.storage.GetCredential(ctx, userID, provider)
	if err != nil {
		if errors.Is(err, storage.ErrCredentialsNotFound) {
			return nil, ErrNotLinked
		}
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	binding := aad(userID, provider)
	access, err := s.keyring.Open(cred.KeyID, cred.AccessTokenSealed, binding)
	if err != nil {
		return nil, fmt.Errorf("failed to open access token: %w", err)
	}
	tok := &oauth2.Token{
		AccessToken: string(access),
		TokenType:   cred.TokenType,
		Expiry:      cred.Expiry,
	}
	if len(cred.RefreshTokenSealed) > 0 {
		refresh, err := s.keyring.Open(cred.KeyID, cred.RefreshTokenSealed, binding)
		if err != nil {
			return nil, fmt.Errorf("failed to open refresh token: %w", err)
		}
		tok.RefreshToken = string(refresh)
	}
	return tok, nil
}

// Delete unlinks the provider account
func (s *Store) Delete(ctx context.Context, userID int64, provider models.Provider) error {
	err := s.storage.DeleteCredential(ctx, userID, provider)
	if errors.Is(err, storage.ErrCredentialsNotFound) {
		return ErrNotLinked
	}
	return err
}

// TokenSource returns a source of valid access tokens for (userID, provider).
// Refreshed tokens are sealed and written back before they are handed out.
func (s *Store) TokenSource(ctx context.Context, userID int64, provider models.Provider) (oauth2.TokenSource, error) {
	tok, err := s.Token(ctx, userID, provider)
	if err != nil {
		return nil, err
	}

	cfg, ok := s.configs[provider]
	if !ok || cfg == nil || cfg.Endpoint.TokenURL == "" || tok.RefreshToken == "" {
		return oauth2.StaticTokenSource(tok), nil
	}

	src := &persistingSource{
		base:     cfg.TokenSource(ctx, tok),
		store:    s,
		ctx:      ctx,
		userID:   userID,
		provider: provider,
		last:     tok.AccessToken,
	}
	return oauth2.ReuseTokenSource(tok, src), nil
}

// Client returns an HTTP client authorized as the user's provider account
func (s *Store) Client(ctx context.Context, userID int64, provider models.Provider) (*http.Client, error) {
	src, err := s.TokenSource(ctx, userID, provider)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, src), nil
}

// persistingSource re-seals the token whenever the base source refreshed it
type persistingSource struct {
	base     oauth2.TokenSource
	store    *Store
	ctx      context.Context
	provider models.Provider
	last     string
	userID   int64
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken == p.last {
		return tok, nil
	}

	if err := p.store.Save(p.ctx, p.userID, p.provider, tok); err != nil {
		// Токен уже действителен, сохраним при следующем обновлении
		p.store.logger.Error("Failed to persist refreshed token",
			"user_id", p.userID, "provider", p.provider, "error", err)
		return tok, nil
	}
	p.last = tok.AccessToken
	p.store.logger.Info("Provider token refreshed", "user_id", p.userID, "provider", p.provider)
	return tok, nil
}
