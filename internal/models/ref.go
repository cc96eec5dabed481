package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// localRefPrefix помечает временные клиентские идентификаторы в текстовом виде
const localRefPrefix = "tmp:"

// Ref identifies an entity either by its server-assigned id (Remote) or by a
// client-generated placeholder (Local) that is used until the server confirms
// the entity. Exactly one of the two is set on a non-zero Ref.
type Ref struct {
	Local  uuid.UUID
	Remote int64
}

// RemoteRef returns a Ref for a server-assigned id.
func RemoteRef(id int64) Ref {
	return Ref{Remote: id}
}

// NewLocalRef returns a fresh placeholder Ref.
func NewLocalRef() Ref {
	return Ref{Local: uuid.New()}
}

// IsLocal reports whether r is a client placeholder still waiting for a real id.
func (r Ref) IsLocal() bool {
	return r.Local != uuid.Nil
}

// IsZero reports whether r is unset.
func (r Ref) IsZero() bool {
	return r.Local == uuid.Nil && r.Remote == 0
}

// String renders the ref as "tmp:<uuid>" or as the decimal server id.
func (r Ref) String() string {
	if r.IsLocal() {
		return localRefPrefix + r.Local.String()
	}
	return strconv.FormatInt(r.Remote, 10)
}

// Key returns the storage key of the ref.
func (r Ref) Key() []byte {
	return []byte(r.String())
}

// ParseRef parses the textual form produced by String.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, localRefPrefix) {
		id, err := uuid.Parse(strings.TrimPrefix(s, localRefPrefix))
		if err != nil {
			return Ref{}, fmt.Errorf("invalid local ref %q: %w", s, err)
		}
		return Ref{Local: id}, nil
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Ref{}, fmt.Errorf("invalid ref %q: %w", s, err)
	}
	if id <= 0 {
		return Ref{}, fmt.Errorf("invalid ref %q: server ids are positive", s)
	}
	return Ref{Remote: id}, nil
}

// MarshalJSON encodes remote refs as numbers and local refs as strings.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.IsLocal() {
		return json.Marshal(r.String())
	}
	return []byte(strconv.FormatInt(r.Remote, 10)), nil
}

// UnmarshalJSON accepts a number, a numeric string or a "tmp:<uuid>" string.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode ref: %w", err)
		}
		if s == "" {
			*r = Ref{}
			return nil
		}
		parsed, err := ParseRef(s)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	}

	id, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("failed to decode ref %s: %w", data, err)
	}
	*r = Ref{Remote: id}
	return nil
}

// remap replaces r with the real id when r is the given placeholder.
func (r *Ref) remap(from uuid.UUID, to int64) bool {
	if r == nil || !r.IsLocal() || r.Local != from {
		return false
	}
	*r = Ref{Remote: to}
	return true
}
