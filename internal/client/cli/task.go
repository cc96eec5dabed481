package cli

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/iudanet/tasksync/internal/client/tasks"
	"github.com/iudanet/tasksync/internal/models"
)

// taskOptions are the flags shared by "task add" and "task edit"
type taskOptions struct {
	list        string
	parent      string
	title       string
	description string
	due         string
	labels      []string
	priority    int
	clearDue    bool
	setPriority bool
}

var templates = template.Must(template.New("cli").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`{{define "task"}}` + taskTemplate + `{{end}}` +
	`{{define "action"}}` + actionTemplate + `{{end}}` +
	`{{define "conflict"}}` + conflictTemplate + `{{end}}`))

func (c *Cli) runTaskAdd(ctx context.Context, opts taskOptions) error {
	if opts.list == "" {
		return fmt.Errorf("missing list. Usage: tasksync task add <title> --list <list>")
	}
	list, err := c.tasks.FindList(opts.list)
	if err != nil {
		return err
	}

	in := tasks.TaskInput{
		ListID:      list.ID,
		Title:       opts.title,
		Description: opts.description,
		Priority:    opts.priority,
	}
	if opts.parent != "" {
		parent, err := parseRef(opts.parent)
		if err != nil {
			return err
		}
		in.ParentID = &parent
	}
	if opts.due != "" {
		due, hasTime, err := parseDue(opts.due)
		if err != nil {
			return err
		}
		in.DueAt = &due
		in.DueHasTime = hasTime
	}
	if in.LabelIDs, err = c.labelRefs(opts.labels); err != nil {
		return err
	}

	ref, err := c.tasks.CreateTask(ctx, in)
	if err != nil {
		return err
	}

	c.io.Printf("✓ Task added: %s\n", ref)
	c.afterMutation(ctx)
	return nil
}

func (c *Cli) labelRefs(names []string) ([]models.Ref, error) {
	if len(names) == 0 {
		return nil, nil
	}
	refs := make([]models.Ref, 0, len(names))
	for _, name := range names {
		label, err := c.tasks.FindLabel(name)
		if err != nil {
			return nil, err
		}
		refs = append(refs, label.ID)
	}
	return refs, nil
}

func (c *Cli) runTaskEdit(ctx context.Context, id string, opts taskOptions) error {
	ref, err := parseRef(id)
	if err != nil {
		return err
	}

	var patch models.TaskPatch
	changed := false
	if opts.title != "" {
		patch.Title = &opts.title
		changed = true
	}
	if opts.description != "" {
		patch.Description = &opts.description
		changed = true
	}
	if opts.setPriority {
		patch.Priority = &opts.priority
		changed = true
	}
	if opts.clearDue {
		patch.ClearDue = true
		changed = true
	}
	if opts.due != "" {
		due, hasTime, err := parseDue(opts.due)
		if err != nil {
			return err
		}
		patch.DueAt = &due
		patch.DueHasTime = &hasTime
		changed = true
	}
	if opts.labels != nil {
		labels, err := c.labelRefs(opts.labels)
		if err != nil {
			return err
		}
		if labels == nil {
			labels = []models.Ref{}
		}
		patch.LabelIDs = &labels
		changed = true
	}
	if !changed {
		return fmt.Errorf("nothing to change. Use --title, --description, --due, --clear-due, --priority or --label")
	}

	if err := c.tasks.UpdateTask(ctx, ref, patch); err != nil {
		return notFound(err, "task", id)
	}
	c.io.Println("✓ Task updated")
	c.afterMutation(ctx)
	return nil
}

func (c *Cli) runTaskDone(ctx context.Context, id string, completed bool) error {
	ref, err := parseRef(id)
	if err != nil {
		return err
	}
	if err := c.tasks.CompleteTask(ctx, ref, completed); err != nil {
		return notFound(err, "task", id)
	}

	if completed {
		c.io.Println("✓ Task completed")
	} else {
		c.io.Println("✓ Task reopened")
	}
	c.afterMutation(ctx)
	return nil
}

func (c *Cli) runTaskMove(ctx context.Context, id, listName, parent string) error {
	ref, err := parseRef(id)
	if err != nil {
		return err
	}
	list, err := c.tasks.FindList(listName)
	if err != nil {
		return err
	}

	var parentRef *models.Ref
	if parent != "" {
		p, err := parseRef(parent)
		if err != nil {
			return err
		}
		parentRef = &p
	}

	if err := c.tasks.MoveTask(ctx, ref, list.ID, parentRef); err != nil {
		return notFound(err, "task", id)
	}
	c.io.Printf("✓ Task moved to %s\n", list.Name)
	c.afterMutation(ctx)
	return nil
}

func (c *Cli) runTaskDelete(ctx context.Context, id string) error {
	ref, err := parseRef(id)
	if err != nil {
		return err
	}
	if err := c.tasks.DeleteTask(ctx, ref); err != nil {
		return notFound(err, "task", id)
	}
	c.io.Println("✓ Task deleted")
	c.afterMutation(ctx)
	return nil
}

func (c *Cli) runTaskList(listName, labelName string, all bool) error {
	var filter tasks.Filter
	filter.IncludeCompleted = all
	if listName != "" {
		list, err := c.tasks.FindList(listName)
		if err != nil {
			return err
		}
		filter.ListID = &list.ID
	}
	if labelName != "" {
		label, err := c.tasks.FindLabel(labelName)
		if err != nil {
			return err
		}
		filter.LabelID = &label.ID
	}

	found := c.tasks.ListTasks(filter)
	if len(found) == 0 {
		c.io.Println("No tasks found.")
		return nil
	}

	labelNames := c.labelNames()
	for _, t := range found {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		c.io.Printf("[%s] %-6s %s%s\n", mark, t.ID, t.Title, taskSuffix(t, labelNames))
	}
	return nil
}

func (c *Cli) labelNames() map[models.Ref]string {
	names := make(map[models.Ref]string)
	for _, l := range c.tasks.Labels() {
		names[l.ID] = l.Name
	}
	return names
}

// taskSuffix renders due date, priority and labels as "  (due 2026-05-01, P2, #home)"
func taskSuffix(t *models.Task, labelNames map[models.Ref]string) string {
	var parts []string
	if due := formatDue(t); due != "" {
		parts = append(parts, "due "+due)
	}
	if t.Priority > 0 {
		parts = append(parts, fmt.Sprintf("P%d", t.Priority))
	}
	for _, l := range t.LabelIDs {
		if name, ok := labelNames[l]; ok {
			parts = append(parts, "#"+name)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "  (" + strings.Join(parts, ", ") + ")"
}

func formatDue(t *models.Task) string {
	if t.DueAt == nil {
		return ""
	}
	if t.DueHasTime {
		return t.DueAt.Local().Format("2006-01-02 15:04")
	}
	// Дата без времени хранится как полночь UTC
	return t.DueAt.UTC().Format(time.DateOnly)
}

func (c *Cli) runTaskShow(id string) error {
	ref, err := parseRef(id)
	if err != nil {
		return err
	}
	task, err := c.tasks.GetTask(ref)
	if err != nil {
		return notFound(err, "task", id)
	}

	view := struct {
		Task     *models.Task
		ListName string
		Due      string
		Labels   []string
		Pending  bool
	}{
		Task:     task,
		ListName: task.ListID.String(),
		Due:      formatDue(task),
		Pending:  task.ID.IsLocal(),
	}
	if list, err := c.tasks.FindList(task.ListID.String()); err == nil {
		view.ListName = list.Name
	}
	labelNames := c.labelNames()
	for _, l := range task.LabelIDs {
		if name, ok := labelNames[l]; ok {
			view.Labels = append(view.Labels, name)
		}
	}

	return templates.ExecuteTemplate(c.io, "task", view)
}
