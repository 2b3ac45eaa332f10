package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tasq/internal/client"
	"github.com/hay-kot/tasq/internal/core/logging"
	"github.com/hay-kot/tasq/internal/core/task"
	"github.com/hay-kot/tasq/internal/core/validate"
	"github.com/hay-kot/tasq/internal/printer"
	"github.com/hay-kot/tasq/pkg/iojson"
)

type AddCmd struct {
	flags *Flags

	// flags
	title       string
	description string
	priority    string
	deadline    string
	jsonOutput  bool
	file        iojson.FileReader[task.NewTask]
}

// NewAddCmd creates a new add command
func NewAddCmd(flags *Flags) *AddCmd {
	return &AddCmd{flags: flags}
}

// Register adds the add command to the application
func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Usage:     "Create a task",
		UsageText: "tasq add --title TITLE [options]",
		Description: `Creates a task on the server.

Without --title an interactive form is shown. A JSON payload can also be read
from --file or piped on stdin:

  echo '{"title": "Ship it", "priority": 1}' | tasq add`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "task title",
				Destination: &cmd.title,
			},
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "task description (markdown)",
				Destination: &cmd.description,
			},
			&cli.StringFlag{
				Name:        "priority",
				Aliases:     []string{"p"},
				Usage:       "high, medium or low",
				Value:       task.DefaultPriority.Name(),
				Destination: &cmd.priority,
			},
			&cli.StringFlag{
				Name:        "deadline",
				Usage:       "deadline as YYYY-MM-DD HH:MM",
				Destination: &cmd.deadline,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the created task as JSON",
				Destination: &cmd.jsonOutput,
			},
			cmd.file.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	nt, err := cmd.input()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	svc, err := cmd.flags.Client(ctx)
	if err != nil {
		return err
	}

	ctx = logging.WithOperation(ctx, "create_task")
	created, err := svc.CreateTask(ctx, nt)
	if err != nil {
		if client.IsNetwork(err) {
			return fmt.Errorf("create task: network error occurred: %w", err)
		}
		return fmt.Errorf("error creating task: %s", client.Message(err))
	}

	if cmd.jsonOutput {
		return iojson.WriteLine(c.Root().Writer, created)
	}

	p.Successf("Task %s created successfully!", created.ID)
	return nil
}

// input resolves the payload from flags, a JSON file or stdin, or the
// interactive form, then normalizes and validates it.
func (cmd *AddCmd) input() (task.NewTask, error) {
	var nt task.NewTask

	switch {
	case cmd.file.Set() || (cmd.title == "" && iojson.Piped()):
		read, err := cmd.file.Read()
		if err != nil {
			return nt, fmt.Errorf("read task: %w", err)
		}
		nt = read
	default:
		if cmd.title == "" {
			if err := cmd.runForm(); err != nil {
				return nt, err
			}
		}
		priority, err := task.ParsePriority(cmd.priority)
		if err != nil {
			return nt, err
		}
		nt = task.NewTask{
			Title:       cmd.title,
			Description: cmd.description,
			Priority:    priority,
			Deadline:    cmd.deadline,
		}
	}

	return normalizeNewTask(nt)
}

func normalizeNewTask(nt task.NewTask) (task.NewTask, error) {
	nt.Title = strings.TrimSpace(nt.Title)
	if nt.Priority == 0 {
		nt.Priority = task.DefaultPriority
	}
	nt.Status = task.StatusActive

	deadline, err := task.NormalizeDeadline(nt.Deadline)
	if err != nil {
		return nt, err
	}
	nt.Deadline = deadline

	return nt, nt.Validate()
}

func (cmd *AddCmd) runForm() error {
	// select options carry numeric values
	if p, err := task.ParsePriority(cmd.priority); err == nil {
		cmd.priority = strconv.Itoa(int(p))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Validate(validate.TaskTitle).
				Value(&cmd.title),
			huh.NewText().
				Title("Description").
				Description("Markdown is rendered in the detail view").
				Value(&cmd.description),
			huh.NewSelect[string]().
				Title("Priority").
				Options(
					huh.NewOption("High", strconv.Itoa(int(task.PriorityHigh))),
					huh.NewOption("Medium", strconv.Itoa(int(task.PriorityMedium))),
					huh.NewOption("Low", strconv.Itoa(int(task.PriorityLow))),
				).
				Value(&cmd.priority),
			huh.NewInput().
				Title("Deadline").
				Description("YYYY-MM-DD HH:MM, optional").
				Validate(validate.Deadline).
				Value(&cmd.deadline),
		),
	).WithTheme(huh.ThemeCharm()).Run()
}
