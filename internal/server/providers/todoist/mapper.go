package todoist

import (
	"time"

	"github.com/iudanet/tasksync/internal/models"
)

const (
	dateLayout = time.DateOnly
	// datetimeLayout - плавающее время без зоны
	datetimeLayout = "2006-01-02T15:04:05"
	// noDate снимает срок задачи при обновлении
	noDate = "no date"
)

// MapRemoteToLocal converts a wire task into local fields.
// Remote priority 1 (normal) is local 0 (none); 2..4 are the same on both sides.
// Local 1 is also sent as remote 1, so the sync engine keeps a stored local 1
// when the remote side still says 1 (see Capabilities.PriorityFloor).
func MapRemoteToLocal(remote *Task, localListID models.Ref) *models.Task {
	t := &models.Task{
		ListID:      localListID,
		Title:       remote.Content,
		Description: remote.Description,
		Completed:   remote.Checked,
		Priority:    localPriority(remote.Priority),
	}
	if remote.UpdatedAt != nil {
		if updated, ok := parseTime(*remote.UpdatedAt); ok {
			t.UpdatedAt = updated
		}
	}
	if t.Completed && remote.CompletedAt != nil {
		if completed, ok := parseTime(*remote.CompletedAt); ok {
			t.CompletedAt = &completed
		}
	}
	if remote.Due != nil {
		t.DueAt, t.DueHasTime = parseDue(remote.Due)
	}
	return t
}

// MapLocalToRemote converts local fields into a create/update body.
// A due without time is sent as due_date, otherwise as a UTC due_datetime.
func MapLocalToRemote(local *models.Task, labels []string) *TaskWrite {
	w := &TaskWrite{
		Content:     local.Title,
		Description: local.Description,
		Priority:    remotePriority(local.Priority),
		Labels:      append([]string{}, labels...),
	}
	switch {
	case local.DueAt == nil:
		w.DueString = noDate
	case local.DueHasTime:
		w.DueDatetime = local.DueAt.UTC().Format(time.RFC3339)
	default:
		w.DueDate = local.DueAt.UTC().Format(dateLayout)
	}
	return w
}

func localPriority(p int) int {
	if p <= 1 {
		return 0
	}
	if p > 4 {
		return 4
	}
	return p
}

func remotePriority(p int) int {
	if p < 1 {
		return 1
	}
	if p > 4 {
		return 4
	}
	return p
}

// parseDue reads datetime first, then the day
func parseDue(due *Due) (*time.Time, bool) {
	if due.Datetime != "" {
		if t, ok := parseTime(due.Datetime); ok {
			return &t, true
		}
		// Плавающее время трактуется как UTC
		if t, err := time.Parse(datetimeLayout, due.Datetime); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	if due.Date != "" {
		if t, err := time.Parse(dateLayout, due.Date); err == nil {
			return &t, false
		}
	}
	return nil, false
}

func parseTime(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
