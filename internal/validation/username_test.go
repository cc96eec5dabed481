package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{name: "simple", username: "alice"},
		{name: "digits and underscore", username: "user_42"},
		{name: "dot and dash", username: "jane.doe-work"},
		{name: "starts with digit", username: "42team"},
		{name: "min length", username: "abc"},
		{name: "max length", username: strings.Repeat("a", MaxUsernameLen)},
		{name: "empty", username: "", wantErr: true},
		{name: "too short", username: "ab", wantErr: true},
		{name: "too long", username: strings.Repeat("a", MaxUsernameLen+1), wantErr: true},
		{name: "uppercase", username: "Alice", wantErr: true},
		{name: "surrounding space", username: " alice", wantErr: true},
		{name: "inner space", username: "al ice", wantErr: true},
		{name: "starts with dot", username: ".alice", wantErr: true},
		{name: "cyrillic", username: "алиса", wantErr: true},
		{name: "at sign", username: "alice@example", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidUsername)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "alice", NormalizeUsername("  Alice "))
	assert.Equal(t, "jane.doe", NormalizeUsername("JANE.DOE"))
	assert.NoError(t, ValidateUsername(NormalizeUsername(" Bob_7 ")))
}
