package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tasq/internal/core/logging"
	"github.com/hay-kot/tasq/internal/printer"
	"github.com/hay-kot/tasq/internal/render"
)

type ExportCmd struct {
	flags *Flags

	// flags
	html   bool
	output string
	title  string
}

// NewExportCmd creates a new export command
func NewExportCmd(flags *Flags) *ExportCmd {
	return &ExportCmd{flags: flags}
}

// Register adds the export command to the application
func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "export",
		Usage:     "Export every task as markdown or HTML",
		UsageText: "tasq export [--html] [--output FILE]",
		Description: `Fetches all pages and writes the tasks in server order.

Markdown is written by default. --html writes a standalone page with all task
text escaped.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "html",
				Usage:       "write an HTML document",
				Destination: &cmd.html,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "write to a file instead of stdout",
				Destination: &cmd.output,
			},
			&cli.StringFlag{
				Name:        "title",
				Usage:       "document title for HTML output",
				Value:       "Tasks",
				Destination: &cmd.title,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ExportCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	svc, err := cmd.flags.Client(ctx)
	if err != nil {
		return err
	}

	tasks, _, err := fetchTasks(logging.WithOperation(ctx, "export"), svc, "", true)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	fragments := make([]render.Fragment, 0, len(tasks))
	for _, t := range tasks {
		fragments = append(fragments, render.Format(t))
	}

	var w io.Writer = c.Root().Writer
	if cmd.output != "" {
		if err := os.MkdirAll(filepath.Dir(cmd.output), 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		f, err := os.Create(cmd.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := cmd.write(w, fragments); err != nil {
		return err
	}

	if cmd.output != "" {
		p.Successf("Exported %d task(s) to %s", len(fragments), cmd.output)
	}
	return nil
}

func (cmd *ExportCmd) write(w io.Writer, fragments []render.Fragment) error {
	if cmd.html {
		return render.WriteHTML(w, render.Document{
			Title:     cmd.title,
			Generated: time.Now(),
			Fragments: fragments,
		})
	}

	for i, f := range fragments {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, render.Markdown(f)); err != nil {
			return fmt.Errorf("write markdown: %w", err)
		}
	}
	return nil
}
