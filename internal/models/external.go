package models

import (
	"encoding/json"
	"time"
)

// Provider names a third-party task service.
type Provider string

const (
	ProviderGoogle  Provider = "google"
	ProviderTodoist Provider = "todoist"
)

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	return p == ProviderGoogle || p == ProviderTodoist
}

// ExternalEntityType is the kind of entity recorded in the entity map.
type ExternalEntityType string

const (
	ExternalList      ExternalEntityType = "list"
	ExternalTask      ExternalEntityType = "task"
	ExternalLabel     ExternalEntityType = "label"
	ExternalListLabel ExternalEntityType = "list_label" // local list backed by a remote label
)

// ExternalEntityMap records that a local entity and a remote entity are the same thing.
type ExternalEntityMap struct {
	ExternalUpdatedAt *time.Time         `json:"external_updated_at,omitempty"`
	Provider          Provider           `json:"provider"`
	EntityType        ExternalEntityType `json:"entity_type"`
	ExternalID        string             `json:"external_id"`
	ExternalParentID  string             `json:"external_parent_id,omitempty"`
	ExternalListID    string             `json:"external_list_id,omitempty"` // список, в котором лежит удаленная задача
	ExternalEtag      string             `json:"external_etag,omitempty"`
	ID                int64              `json:"id"`
	UserID            int64              `json:"user_id"`
	LocalID           int64              `json:"local_id"`
}

// SyncStatus is the state of one (user, provider) sync cursor.
type SyncStatus string

const (
	SyncIdle    SyncStatus = "idle"
	SyncSyncing SyncStatus = "syncing"
	SyncError   SyncStatus = "error"
)

// ExternalSyncState is both the incremental cursor and the mutual-exclusion flag.
type ExternalSyncState struct {
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	Provider     Provider   `json:"provider"`
	Status       SyncStatus `json:"status"`
	Error        string     `json:"error,omitempty"`
	UserID       int64      `json:"user_id"`
}

// ConflictStatus описывает состояние конфликта синхронизации
type ConflictStatus string

const (
	ConflictPending  ConflictStatus = "pending"
	ConflictResolved ConflictStatus = "resolved"
)

// ConflictTypeBothModified is recorded when both sides changed after the last sync.
const ConflictTypeBothModified = "both_modified"

// ConflictResolution is the user's choice for an ExternalSyncConflict.
type ConflictResolution string

const (
	ResolveKeepLocal  ConflictResolution = "keep_local"
	ResolveKeepRemote ConflictResolution = "keep_remote"
	ResolveMerge      ConflictResolution = "merge"
)

// ExternalSyncConflict stores both payloads of a divergent entity until the user decides.
type ExternalSyncConflict struct {
	CreatedAt       time.Time          `json:"created_at"`
	ResolvedAt      *time.Time         `json:"resolved_at,omitempty"`
	Provider        Provider           `json:"provider"`
	EntityType      ExternalEntityType `json:"entity_type"`
	ExternalID      string             `json:"external_id"`
	ConflictType    string             `json:"conflict_type"`
	Status          ConflictStatus     `json:"status"`
	Resolution      ConflictResolution `json:"resolution,omitempty"`
	LocalPayload    json.RawMessage    `json:"local_payload"`
	ExternalPayload json.RawMessage    `json:"external_payload"`
	ID              int64              `json:"id"`
	UserID          int64              `json:"user_id"`
	LocalID         int64              `json:"local_id"`
}

// ProviderCredential holds sealed provider tokens. KeyID names the sealing key.
type ProviderCredential struct {
	Expiry             time.Time `json:"expiry"`
	Provider           Provider  `json:"provider"`
	KeyID              string    `json:"key_id"`
	TokenType          string    `json:"token_type"`
	AccessTokenSealed  []byte    `json:"-"`
	RefreshTokenSealed []byte    `json:"-"`
	UserID             int64     `json:"user_id"`
}
