package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tasq/internal/core/task"
)

// TaskIDCompleter returns a ShellCompleteFunc that suggests ids of tasks
// whose status differs from target, so `done` offers open tasks and `undo`
// offers completed ones. Only the first page is consulted.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func TaskIDCompleter(flags *Flags, target task.Status) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		svc, err := flags.Client(ctx)
		if err != nil {
			return
		}
		page, err := svc.ListTasks(ctx, "")
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, t := range page.Tasks {
			if t.Status == target {
				continue
			}
			_, _ = fmt.Fprintf(w, "%s:%s\n", t.ID, t.Title)
		}
	}
}
