package api

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/iudanet/tasksync/internal/models"
)

// ActionRequest is one queued action sent for execution.
// The response body is a models.Result.
type ActionRequest struct {
	Kind    models.ActionKind `json:"kind"`
	Payload json.RawMessage   `json:"payload"`
	ID      uuid.UUID         `json:"id"` // повторная отправка с тем же id не применяется дважды
}

// ListsResponse содержит все списки пользователя
type ListsResponse struct {
	Lists []*models.List `json:"lists"`
}

// TasksResponse содержит все задачи пользователя
type TasksResponse struct {
	Tasks []*models.Task `json:"tasks"`
}

// LabelsResponse содержит все метки пользователя
type LabelsResponse struct {
	Labels []*models.Label `json:"labels"`
}
