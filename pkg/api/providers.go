package api

import (
	"encoding/json"
	"time"

	"github.com/iudanet/tasksync/internal/models"
)

// ProviderSyncResponse is the outcome of one provider sync pass.
type ProviderSyncResponse struct {
	LastSyncedAt  *time.Time `json:"last_synced_at,omitempty"`
	Status        string     `json:"status"` // ok | error
	Error         string     `json:"error,omitempty"`
	ConflictCount int        `json:"conflict_count"`
	Pulled        int        `json:"pulled"`
	Pushed        int        `json:"pushed"`
	Deleted       int        `json:"deleted"`
}

// ConflictsResponse lists pending provider conflicts.
type ConflictsResponse struct {
	Conflicts []*models.ExternalSyncConflict `json:"conflicts"`
}

// ResolveConflictRequest chooses a side for a provider conflict.
type ResolveConflictRequest struct {
	Resolution models.ConflictResolution `json:"resolution"`
	Merged     json.RawMessage           `json:"merged,omitempty"` // только для merge
}

// ResolveConflictResponse returns the task as it stands after the resolution.
type ResolveConflictResponse struct {
	Task *models.Task `json:"task"`
}

// LinkProviderRequest stores OAuth tokens for a provider account.
// Tokens are sealed before they reach the database.
type LinkProviderRequest struct {
	Expiry       *time.Time `json:"expiry,omitempty"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	TokenType    string     `json:"token_type,omitempty"`
}
