package cli

import "context"

func (c *Cli) runLabelAdd(ctx context.Context, name, color string) error {
	ref, err := c.tasks.CreateLabel(ctx, name, color)
	if err != nil {
		return err
	}
	c.io.Printf("✓ Label created: %s (%s)\n", name, ref)
	c.afterMutation(ctx)
	return nil
}

// runLabelEdit changes name and/or color; empty strings leave a field as is
func (c *Cli) runLabelEdit(ctx context.Context, nameOrID, newName, color string) error {
	label, err := c.tasks.FindLabel(nameOrID)
	if err != nil {
		return err
	}

	var namePtr, colorPtr *string
	if newName != "" {
		namePtr = &newName
	}
	if color != "" {
		colorPtr = &color
	}
	if namePtr == nil && colorPtr == nil {
		c.io.Println("Nothing to change. Use --name or --color.")
		return nil
	}

	if err := c.tasks.UpdateLabel(ctx, label.ID, namePtr, colorPtr); err != nil {
		return notFound(err, "label", nameOrID)
	}
	c.io.Println("✓ Label updated")
	c.afterMutation(ctx)
	return nil
}

func (c *Cli) runLabelDelete(ctx context.Context, nameOrID string) error {
	label, err := c.tasks.FindLabel(nameOrID)
	if err != nil {
		return err
	}
	if err := c.tasks.DeleteLabel(ctx, label.ID); err != nil {
		return notFound(err, "label", nameOrID)
	}
	c.io.Printf("✓ Label deleted: %s\n", label.Name)
	c.afterMutation(ctx)
	return nil
}

func (c *Cli) runLabelShow() error {
	labels := c.tasks.Labels()
	if len(labels) == 0 {
		c.io.Println("No labels yet.")
		return nil
	}
	for _, l := range labels {
		if l.Color != "" {
			c.io.Printf("%-8s %s [%s]\n", l.ID, l.Name, l.Color)
			continue
		}
		c.io.Printf("%-8s %s\n", l.ID, l.Name)
	}
	return nil
}
