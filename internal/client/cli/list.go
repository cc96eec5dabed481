package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runListAdd(ctx context.Context, name string) error {
	ref, err := c.tasks.CreateList(ctx, name)
	if err != nil {
		return err
	}
	c.io.Printf("✓ List created: %s (%s)\n", name, ref)
	c.afterMutation(ctx)
	return nil
}

func (c *Cli) runListRename(ctx context.Context, nameOrID, newName string) error {
	list, err := c.tasks.FindList(nameOrID)
	if err != nil {
		return err
	}
	if err := c.tasks.RenameList(ctx, list.ID, newName); err != nil {
		return notFound(err, "list", nameOrID)
	}
	c.io.Printf("✓ List renamed: %s -> %s\n", list.Name, newName)
	c.afterMutation(ctx)
	return nil
}

func (c *Cli) runListDelete(ctx context.Context, nameOrID string, force bool) error {
	list, err := c.tasks.FindList(nameOrID)
	if err != nil {
		return err
	}

	if !force {
		answer, err := c.io.ReadInput(fmt.Sprintf("Delete list %q and all its tasks? [y/N]: ", list.Name))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if answer != "y" && answer != "Y" && answer != "yes" {
			c.io.Println("Cancelled.")
			return nil
		}
	}

	if err := c.tasks.DeleteList(ctx, list.ID); err != nil {
		return notFound(err, "list", nameOrID)
	}
	c.io.Printf("✓ List deleted: %s\n", list.Name)
	c.afterMutation(ctx)
	return nil
}

func (c *Cli) runListShow() error {
	lists := c.tasks.Lists()
	if len(lists) == 0 {
		c.io.Println("No lists yet. Create one with 'tasksync list add <name>'.")
		return nil
	}
	for _, l := range lists {
		c.io.Printf("%-8s %s\n", l.ID, l.Name)
	}
	return nil
}
