// Package config loads settings for both binaries from an optional YAML
// file, TASKSYNC_* environment variables and command-line flags.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// LogConfig описывает настройки логирования
type LogConfig struct {
	Level      string `mapstructure:"level"`  // debug | info | warn | error
	Format     string `mapstructure:"format"` // text | json
	File       string `mapstructure:"file"`   // пусто = stderr
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// ClientConfig is the configuration of the tasksync CLI.
type ClientConfig struct {
	ServerURL     string        `mapstructure:"server_url"`
	DBPath        string        `mapstructure:"db_path"`
	Log           LogConfig     `mapstructure:"log"`
	FlushIdle     time.Duration `mapstructure:"flush_idle"`
	StaleAfter    time.Duration `mapstructure:"stale_after"`
	LockTTL       time.Duration `mapstructure:"lock_ttl"`
	FlushMaxBatch int           `mapstructure:"flush_max_batch"`
}

// ProviderConfig holds the endpoints and OAuth client of one provider.
type ProviderConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	TokenURL     string `mapstructure:"token_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// ServerConfig is the configuration of tasksync-server.
type ServerConfig struct {
	ListenAddr       string         `mapstructure:"listen_addr"`
	DBPath           string         `mapstructure:"db_path"`
	JWTSecret        string         `mapstructure:"jwt_secret"`
	CredentialsKey   string         `mapstructure:"credentials_key"` // base64, 32 байта
	CredentialsKeyID string         `mapstructure:"credentials_key_id"`
	Google           ProviderConfig `mapstructure:"google"`
	Todoist          ProviderConfig `mapstructure:"todoist"`
	Log              LogConfig      `mapstructure:"log"`
	JWTAccessTTL     time.Duration  `mapstructure:"jwt_access_ttl"`
	SyncInterval     time.Duration  `mapstructure:"sync_interval"` // 0 отключает планировщик
	SyncLease        time.Duration  `mapstructure:"sync_lease"`
	RateWindow       time.Duration  `mapstructure:"rate_window"`
	SyncConcurrency  int            `mapstructure:"sync_concurrency"`
	RateLimit        int            `mapstructure:"rate_limit"`
	ProviderRate     int            `mapstructure:"provider_rate_limit"`
}

var (
	// ErrMissingJWTSecret is returned when the server has no signing secret
	ErrMissingJWTSecret = errors.New("jwt_secret is required")
	// ErrInvalidCredentialsKey is returned when credentials_key is not 32 base64 bytes
	ErrInvalidCredentialsKey = errors.New("credentials_key must be 32 bytes, base64 encoded")
)

// Validate checks settings that have no usable default.
func (c *ServerConfig) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.CredentialsKey != "" {
		if _, err := c.CredentialsKeyBytes(); err != nil {
			return err
		}
	}
	if c.SyncConcurrency < 1 {
		return fmt.Errorf("sync_concurrency must be positive, got %d", c.SyncConcurrency)
	}
	return nil
}

// CredentialsKeyBytes decodes the master key used to seal provider tokens.
func (c *ServerConfig) CredentialsKeyBytes() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(c.CredentialsKey)
	if err != nil || len(key) != 32 {
		return nil, ErrInvalidCredentialsKey
	}
	return key, nil
}
