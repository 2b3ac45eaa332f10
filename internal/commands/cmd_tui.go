package commands

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tasq/internal/core/logging"
	"github.com/hay-kot/tasq/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	build tui.BuildInfo
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, build tui.BuildInfo) *TuiCmd {
	return &TuiCmd{flags: flags, build: build}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	svc, err := cmd.flags.Client(ctx)
	if err != nil {
		return err
	}

	cfg := cmd.flags.Config
	m := tui.New(svc, cmd.options(ctx))

	log := logging.ComponentCtx(logging.WithOperation(ctx, "tui"), "tui")
	log.Info().Str("base_url", cfg.API.BaseURL).Msg("starting tui")

	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// options resolves TUI settings. A theme saved in prefs wins over the
// configured one.
func (cmd *TuiCmd) options(ctx context.Context) tui.Options {
	cfg := cmd.flags.Config

	opts := tui.Options{
		LoginURL:        cfg.API.LoginURL,
		Theme:           cfg.TUI.Theme,
		ScrollThreshold: cfg.TUI.ScrollThreshold,
		RemovalDelay:    cfg.TUI.RemovalDelay.Std(),
		Build:           cmd.build,
	}

	if cmd.flags.Prefs != nil {
		opts.Prefs = cmd.flags.Prefs
		if p, err := cmd.flags.Prefs.Load(ctx); err == nil && p.Theme != "" {
			opts.Theme = p.Theme
		}
	}

	return opts
}
