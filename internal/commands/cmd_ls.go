package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tasq/internal/core/logging"
	"github.com/hay-kot/tasq/internal/core/task"
	"github.com/hay-kot/tasq/internal/render"
	"github.com/hay-kot/tasq/pkg/iojson"
)

type LsCmd struct {
	flags *Flags

	// flags
	jsonOutput bool
	all        bool
	cursor     string
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags) *LsCmd {
	return &LsCmd{flags: flags}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List tasks",
		UsageText: "tasq ls [--json] [--all] [--cursor CURSOR]",
		Description: `Displays one page of tasks with their id, status, priority, title and deadline.

Use --all to follow pagination cursors until the server reports no more tasks.
Use --json for one JSON object per line.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "all",
				Aliases:     []string{"a"},
				Usage:       "fetch every page",
				Destination: &cmd.all,
			},
			&cli.StringFlag{
				Name:        "cursor",
				Usage:       "start from this pagination cursor",
				Destination: &cmd.cursor,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	svc, err := cmd.flags.Client(ctx)
	if err != nil {
		return err
	}

	ctx = logging.WithOperation(ctx, "list_tasks")
	tasks, next, err := fetchTasks(ctx, svc, cmd.cursor, cmd.all)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	out := c.Root().Writer
	errOut := c.Root().ErrWriter

	if cmd.jsonOutput {
		for _, t := range tasks {
			if err := iojson.WriteLine(out, t); err != nil {
				return fmt.Errorf("encode task: %w", err)
			}
		}
		return nil
	}

	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(errOut, "No tasks found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDONE\tPRIORITY\tTITLE\tDEADLINE")
	for _, t := range tasks {
		f := render.Format(t)
		done := " "
		if f.Completed {
			done = "x"
		}
		deadline := f.Deadline
		if deadline == "" {
			deadline = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", f.ID, done, t.Priority.Name(), f.Title, deadline)
	}
	_ = w.Flush()

	if next != "" {
		_, _ = fmt.Fprintf(errOut, "\nMore tasks available: tasq ls --cursor %s\n", next)
	}

	return nil
}

// taskLister is the slice of the API client that paging needs.
type taskLister interface {
	ListTasks(ctx context.Context, cursor string) (task.Page, error)
}

// fetchTasks loads one page starting at cursor, or every remaining page when
// all is set. The returned cursor is empty once the server has no more or
// starts repeating cursors.
func fetchTasks(ctx context.Context, svc taskLister, cursor string, all bool) ([]task.Task, string, error) {
	var tasks []task.Task
	seen := make(map[task.ID]struct{})
	requested := map[string]struct{}{cursor: {}}

	for {
		page, err := svc.ListTasks(ctx, cursor)
		if err != nil {
			return nil, "", err
		}
		for _, t := range page.Tasks {
			if _, dup := seen[t.ID]; dup {
				continue
			}
			seen[t.ID] = struct{}{}
			tasks = append(tasks, t)
		}

		next := page.Pagination.Cursor()
		if !page.Pagination.HasMore || next == "" {
			return tasks, "", nil
		}
		if !all {
			return tasks, next, nil
		}
		// A cursor the server already handed out would page in a cycle.
		if _, again := requested[next]; again {
			return tasks, "", nil
		}
		requested[next] = struct{}{}
		cursor = next
	}
}
