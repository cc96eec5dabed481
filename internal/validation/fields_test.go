package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/tasksync/internal/models"
)

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{name: "valid", title: "Buy milk"},
		{name: "unicode", title: "Купить молоко"},
		{name: "empty", title: "", wantErr: true},
		{name: "spaces only", title: "   ", wantErr: true},
		{name: "max length", title: strings.Repeat("я", MaxTitleLen)},
		{name: "too long", title: strings.Repeat("a", MaxTitleLen+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTitle(tt.title)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateColor(t *testing.T) {
	for _, ok := range []string{"", "red", "berry_red", "#fff", "#A0b1C2"} {
		assert.NoError(t, ValidateColor(ok), ok)
	}
	for _, bad := range []string{"#ff", "#gggggg", "Red Color", "#1234567"} {
		assert.Error(t, ValidateColor(bad), bad)
	}
}

func TestValidatePayload(t *testing.T) {
	empty := ""
	tooHigh := 5
	self := models.RemoteRef(3)

	tests := []struct {
		payload models.Payload
		name    string
		errMsg  string
	}{
		{name: "create task ok", payload: &models.CreateTaskPayload{Ref: models.NewLocalRef(), ListID: models.RemoteRef(1), Title: "Buy milk", Priority: 4}},
		{name: "create task without list", payload: &models.CreateTaskPayload{Title: "Buy milk"}, errMsg: "list_id is required"},
		{name: "create task bad priority", payload: &models.CreateTaskPayload{ListID: models.RemoteRef(1), Title: "x", Priority: -1}, errMsg: "priority"},
		{name: "update empty title", payload: &models.UpdateTaskPayload{ID: models.RemoteRef(1), Patch: models.TaskPatch{Title: &empty}}, errMsg: "title cannot be empty"},
		{name: "update bad priority", payload: &models.UpdateTaskPayload{ID: models.RemoteRef(1), Patch: models.TaskPatch{Priority: &tooHigh}}, errMsg: "priority"},
		{name: "toggle without id", payload: &models.ToggleTaskPayload{}, errMsg: "id is required"},
		{name: "move into itself", payload: &models.MoveTaskPayload{ID: self, ListID: models.RemoteRef(1), ParentID: &self}, errMsg: "own parent"},
		{name: "create list", payload: &models.CreateListPayload{Name: "Inbox"}},
		{name: "create list empty", payload: &models.CreateListPayload{}, errMsg: "name cannot be empty"},
		{name: "label bad color", payload: &models.CreateLabelPayload{Name: "home", Color: "??"}, errMsg: "color"},
		{name: "update label partial", payload: &models.UpdateLabelPayload{ID: models.RemoteRef(2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayload(tt.payload)
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
