package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// Commands builds the command tree over the Cli. The root command is owned by main.
func (c *Cli) Commands() []*cobra.Command {
	return []*cobra.Command{
		c.loginCmd(),
		{
			Use:   "logout",
			Short: "Forget the saved token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.runLogout(cmd.Context())
			},
		},
		{
			Use:   "status",
			Short: "Show authentication and queue status",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.runStatus(cmd.Context())
			},
		},
		c.syncCmd(),
		c.taskCmd(),
		c.listCmd(),
		c.labelCmd(),
		c.queueCmd(),
		c.providerCmd(),
	}
}

func (c *Cli) loginCmd() *cobra.Command {
	var sources TokenSources
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save a bearer token issued by the server",
		Long: `Save a bearer token issued by the server.

The token is taken from TASKSYNC_TOKEN, then --token-file, then --token,
and is asked for interactively otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runLogin(cmd.Context(), sources)
		},
	}
	cmd.Flags().StringVar(&sources.FromFile, "token-file", "", "read the token from a file")
	cmd.Flags().StringVar(&sources.FromArgs, "token", "", "token value (visible in shell history)")
	return cmd
}

func (c *Cli) syncCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Deliver queued changes and refresh from the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runSync(cmd.Context(), force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "refresh even if the local copy is fresh")
	return cmd
}

func addTaskFlags(cmd *cobra.Command, opts *taskOptions) {
	cmd.Flags().StringVarP(&opts.description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&opts.due, "due", "", "due date (YYYY-MM-DD) or time (RFC 3339)")
	cmd.Flags().StringSliceVarP(&opts.labels, "label", "l", nil, "label name or id, repeatable")
	cmd.Flags().IntVarP(&opts.priority, "priority", "p", 0, "priority from 0 (none) to 4 (urgent)")
}

func (c *Cli) taskCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "task",
		Aliases: []string{"t"},
		Short:   "Manage tasks",
	}

	var (
		listName, labelName string
		all                 bool
	)
	ls := &cobra.Command{
		Use:   "ls",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return c.runTaskList(listName, labelName, all)
		},
	}
	ls.Flags().StringVar(&listName, "list", "", "only tasks of this list")
	ls.Flags().StringVar(&labelName, "label", "", "only tasks with this label")
	ls.Flags().BoolVarP(&all, "all", "a", false, "include completed tasks")

	var addOpts taskOptions
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addOpts.title = args[0]
			return c.runTaskAdd(cmd.Context(), addOpts)
		},
	}
	addTaskFlags(add, &addOpts)
	add.Flags().StringVar(&addOpts.list, "list", "", "list name or id (required)")
	add.Flags().StringVar(&addOpts.parent, "parent", "", "parent task id")

	var editOpts taskOptions
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			editOpts.setPriority = cmd.Flags().Changed("priority")
			if !cmd.Flags().Changed("label") {
				editOpts.labels = nil
			} else if editOpts.labels == nil {
				editOpts.labels = []string{}
			}
			return c.runTaskEdit(cmd.Context(), args[0], editOpts)
		},
	}
	addTaskFlags(edit, &editOpts)
	edit.Flags().StringVarP(&editOpts.title, "title", "t", "", "new title")
	edit.Flags().BoolVar(&editOpts.clearDue, "clear-due", false, "remove the due date")

	var moveParent string
	mv := &cobra.Command{
		Use:   "mv <id> <list>",
		Short: "Move a task to another list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTaskMove(cmd.Context(), args[0], args[1], moveParent)
		},
	}
	mv.Flags().StringVar(&moveParent, "parent", "", "new parent task id")

	root.AddCommand(
		ls,
		add,
		edit,
		mv,
		&cobra.Command{
			Use:   "done <id>",
			Short: "Complete a task",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.runTaskDone(cmd.Context(), args[0], true)
			},
		},
		&cobra.Command{
			Use:   "undo <id>",
			Short: "Reopen a completed task",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.runTaskDone(cmd.Context(), args[0], false)
			},
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Delete a task and its subtasks",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.runTaskDelete(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show task details",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return c.runTaskShow(args[0])
			},
		},
	)
	return root
}

func (c *Cli) listCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "list",
		Short: "Manage task lists",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return c.runListShow()
		},
	}

	var force bool
	rm := &cobra.Command{
		Use:   "rm <list>",
		Short: "Delete a list with its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runListDelete(cmd.Context(), args[0], force)
		},
	}
	rm.Flags().BoolVarP(&force, "yes", "y", false, "do not ask for confirmation")

	root.AddCommand(
		&cobra.Command{
			Use:   "add <name>",
			Short: "Create a list",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.runListAdd(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "rename <list> <new-name>",
			Short: "Rename a list",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.runListRename(cmd.Context(), args[0], args[1])
			},
		},
		rm,
	)
	return root
}

func (c *Cli) labelCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "label",
		Short: "Manage labels",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return c.runLabelShow()
		},
	}

	var color string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLabelAdd(cmd.Context(), args[0], color)
		},
	}
	add.Flags().StringVar(&color, "color", "", "label color")

	var newName, newColor string
	edit := &cobra.Command{
		Use:   "edit <label>",
		Short: "Rename or recolor a label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLabelEdit(cmd.Context(), args[0], newName, newColor)
		},
	}
	edit.Flags().StringVar(&newName, "name", "", "new name")
	edit.Flags().StringVar(&newColor, "color", "", "new color")

	root.AddCommand(add, edit, &cobra.Command{
		Use:   "rm <label>",
		Short: "Delete a label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLabelDelete(cmd.Context(), args[0])
		},
	})
	return root
}

func (c *Cli) queueCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:   "queue",
		Short: "Inspect changes not yet confirmed by the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runQueueList(cmd.Context(), verbose)
		},
	}
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "show payloads and conflict data")

	var use, merged string
	resolve := &cobra.Command{
		Use:   "resolve <action-id>",
		Short: "Resolve a conflicted action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQueueResolve(cmd.Context(), args[0], use, merged)
		},
	}
	resolve.Flags().StringVar(&use, "use", "", "server, local or merge")
	resolve.Flags().StringVar(&merged, "merged", "", "file with the merged JSON object")
	_ = resolve.MarkFlagRequired("use")

	root.AddCommand(
		&cobra.Command{
			Use:   "retry <action-id>",
			Short: "Queue a failed action again",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.runQueueRetry(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "dismiss <action-id>",
			Short: "Drop an action and undo its local effect",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.runQueueDismiss(cmd.Context(), args[0])
			},
		},
		resolve,
	)
	return root
}

func (c *Cli) providerCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "provider",
		Short: "Synchronize with Google Tasks or Todoist",
	}

	var keep, merged string
	resolve := &cobra.Command{
		Use:   "resolve <provider> <conflict-id>",
		Short: "Resolve a provider conflict",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return err
			}
			return c.runProviderResolve(cmd.Context(), args[0], id, keep, merged)
		},
	}
	resolve.Flags().StringVar(&keep, "keep", "", "local, remote or merge")
	resolve.Flags().StringVar(&merged, "merged", "", "file with the merged JSON object")
	_ = resolve.MarkFlagRequired("keep")

	root.AddCommand(
		&cobra.Command{
			Use:   "sync <provider>",
			Short: "Run one sync pass with a provider",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.runProviderSync(cmd.Context(), args[0])
			},
		},
		&cobra.Command{
			Use:   "conflicts <provider>",
			Short: "List pending provider conflicts",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.runProviderConflicts(cmd.Context(), args[0])
			},
		},
		resolve,
	)
	return root
}
