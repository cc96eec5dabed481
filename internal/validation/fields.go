package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/iudanet/tasksync/internal/models"
)

const (
	// MaxTitleLen максимальная длина заголовка задачи в символах
	MaxTitleLen = 500
	// MaxNameLen максимальная длина имени списка или метки
	MaxNameLen = 100
	// MaxDescriptionLen максимальная длина описания задачи
	MaxDescriptionLen = 8192
	// MaxPriority соответствует "срочно"
	MaxPriority = 4
)

// ColorPattern допускает имя цвета или hex-код (#rgb, #rrggbb)
var ColorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3}|#[0-9a-fA-F]{6}|[a-z_]{1,32})$`)

// ValidateTitle проверяет заголовок задачи
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return fmt.Errorf("title must not exceed %d characters", MaxTitleLen)
	}
	return nil
}

// ValidateName проверяет имя списка или метки
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return fmt.Errorf("name must not exceed %d characters", MaxNameLen)
	}
	return nil
}

// ValidateDescription проверяет описание задачи
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLen {
		return fmt.Errorf("description must not exceed %d characters", MaxDescriptionLen)
	}
	return nil
}

// ValidatePriority проверяет приоритет 0..4
func ValidatePriority(priority int) error {
	if priority < 0 || priority > MaxPriority {
		return fmt.Errorf("priority must be between 0 and %d", MaxPriority)
	}
	return nil
}

// ValidateColor проверяет цвет метки; пустой цвет допустим
func ValidateColor(color string) error {
	if color == "" {
		return nil
	}
	if !ColorPattern.MatchString(color) {
		return fmt.Errorf("color must be a name or a hex code")
	}
	return nil
}

func validateRef(field string, ref models.Ref) error {
	if ref.IsZero() {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// ValidatePayload checks the user-supplied fields of an action payload.
// The same rules run on the client at dispatch and on the server.
func ValidatePayload(payload models.Payload) error {
	switch p := payload.(type) {
	case *models.CreateTaskPayload:
		if err := validateRef("list_id", p.ListID); err != nil {
			return err
		}
		if err := ValidateTitle(p.Title); err != nil {
			return err
		}
		if err := ValidateDescription(p.Description); err != nil {
			return err
		}
		return ValidatePriority(p.Priority)

	case *models.UpdateTaskPayload:
		if err := validateRef("id", p.ID); err != nil {
			return err
		}
		patch := p.Patch
		if patch.Title != nil {
			if err := ValidateTitle(*patch.Title); err != nil {
				return err
			}
		}
		if patch.Description != nil {
			if err := ValidateDescription(*patch.Description); err != nil {
				return err
			}
		}
		if patch.Priority != nil {
			if err := ValidatePriority(*patch.Priority); err != nil {
				return err
			}
		}
		if patch.ClearDue && patch.DueAt != nil {
			return fmt.Errorf("clear_due and due_at are mutually exclusive")
		}
		return nil

	case *models.ToggleTaskPayload:
		return validateRef("id", p.ID)

	case *models.DeleteTaskPayload:
		return validateRef("id", p.ID)

	case *models.MoveTaskPayload:
		if err := validateRef("id", p.ID); err != nil {
			return err
		}
		if err := validateRef("list_id", p.ListID); err != nil {
			return err
		}
		if p.ParentID != nil && *p.ParentID == p.ID {
			return fmt.Errorf("task cannot be its own parent")
		}
		return nil

	case *models.CreateListPayload:
		return ValidateName(p.Name)

	case *models.UpdateListPayload:
		if err := validateRef("id", p.ID); err != nil {
			return err
		}
		return ValidateName(p.Name)

	case *models.DeleteListPayload:
		return validateRef("id", p.ID)

	case *models.CreateLabelPayload:
		if err := ValidateName(p.Name); err != nil {
			return err
		}
		return ValidateColor(p.Color)

	case *models.UpdateLabelPayload:
		if err := validateRef("id", p.ID); err != nil {
			return err
		}
		if p.Name != nil {
			if err := ValidateName(*p.Name); err != nil {
				return err
			}
		}
		if p.Color != nil {
			return ValidateColor(*p.Color)
		}
		return nil

	case *models.DeleteLabelPayload:
		return validateRef("id", p.ID)

	default:
		return fmt.Errorf("%w: %s", models.ErrUnknownAction, payload.Kind())
	}
}
