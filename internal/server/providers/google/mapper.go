package google

import (
	"time"

	"github.com/iudanet/tasksync/internal/models"
)

// dueLayout is the only due format the API accepts: midnight UTC, millisecond precision
const dueLayout = "2006-01-02T15:04:05.000Z"

// MapRemoteToLocal converts a wire task into local fields.
// The API keeps only the date part of due, so due is always day precision.
func MapRemoteToLocal(remote *Task, localListID models.Ref) *models.Task {
	t := &models.Task{
		ListID:      localListID,
		Title:       remote.Title,
		Description: remote.Notes,
		Completed:   remote.Status == StatusCompleted,
	}
	if updated, ok := parseTime(remote.Updated); ok {
		t.UpdatedAt = updated
	}
	if t.Completed && remote.Completed != nil {
		if completed, ok := parseTime(*remote.Completed); ok {
			t.CompletedAt = &completed
		}
	}
	if remote.Due != nil {
		if due, ok := parseTime(*remote.Due); ok {
			day := truncateDay(due)
			t.DueAt = &day
		}
	}
	return t
}

// MapLocalToRemote converts local fields into a wire task.
// A due with a time of day is sent as its UTC date.
func MapLocalToRemote(local *models.Task) *Task {
	remote := &Task{
		Title:  local.Title,
		Notes:  local.Description,
		Status: StatusNeedsAction,
	}
	if local.Completed {
		remote.Status = StatusCompleted
		at := time.Now().UTC()
		if local.CompletedAt != nil {
			at = local.CompletedAt.UTC()
		}
		completed := at.Format(time.RFC3339Nano)
		remote.Completed = &completed
	}
	if local.DueAt != nil {
		due := truncateDay(*local.DueAt).Format(dueLayout)
		remote.Due = &due
	}
	return remote
}

// MapRemoteList converts a wire task list
func MapRemoteList(remote *TaskList) (name string, updated *time.Time) {
	if t, ok := parseTime(remote.Updated); ok {
		updated = &t
	}
	return remote.Title, updated
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
