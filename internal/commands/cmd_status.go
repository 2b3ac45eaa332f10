package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tasq/internal/client"
	"github.com/hay-kot/tasq/internal/core/logging"
	"github.com/hay-kot/tasq/internal/core/task"
	"github.com/hay-kot/tasq/internal/printer"
)

// StatusCmd registers `done` and `undo`, which set the status of one or more
// tasks.
type StatusCmd struct {
	flags *Flags
}

// NewStatusCmd creates the done and undo commands
func NewStatusCmd(flags *Flags) *StatusCmd {
	return &StatusCmd{flags: flags}
}

// Register adds the done and undo commands to the application
func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:          "done",
			Usage:         "Mark tasks as completed",
			UsageText:     "tasq done ID [ID...]",
			ShellComplete: TaskIDCompleter(cmd.flags, task.StatusCompleted),
			Action:        cmd.action(task.StatusCompleted),
		},
		&cli.Command{
			Name:          "undo",
			Usage:         "Mark tasks as active again",
			UsageText:     "tasq undo ID [ID...]",
			ShellComplete: TaskIDCompleter(cmd.flags, task.StatusActive),
			Action:        cmd.action(task.StatusActive),
		},
	)

	return app
}

func (cmd *StatusCmd) action(status task.Status) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		ids := c.Args().Slice()
		if len(ids) == 0 {
			return fmt.Errorf("at least one task id is required")
		}
		return cmd.run(ctx, ids, status)
	}
}

// run updates every id, reporting each result. It keeps going after a
// failure and returns the joined errors.
func (cmd *StatusCmd) run(ctx context.Context, ids []string, status task.Status) error {
	p := printer.Ctx(ctx)

	svc, err := cmd.flags.Client(ctx)
	if err != nil {
		return err
	}

	ctx = logging.WithOperation(ctx, "update_status")

	var errs []error
	for _, raw := range ids {
		id := task.ID(raw)
		if err := svc.UpdateStatus(ctx, id, status); err != nil {
			p.Errorf("Task %s: %s", id, client.Message(err))
			errs = append(errs, fmt.Errorf("update task %s: %w", id, err))
			continue
		}
		p.Successf("Task %s status updated to %d on server.", id, int(status))
	}

	return errors.Join(errs...)
}
