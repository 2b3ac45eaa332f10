package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tasq/internal/client"
	"github.com/hay-kot/tasq/internal/core/logging"
	"github.com/hay-kot/tasq/internal/core/prefs"
	"github.com/hay-kot/tasq/internal/printer"
)

// AuthCmd registers `login` and `logout`.
type AuthCmd struct {
	flags *Flags

	// login flags
	token  string
	cookie string
}

// NewAuthCmd creates the login and logout commands
func NewAuthCmd(flags *Flags) *AuthCmd {
	return &AuthCmd{flags: flags}
}

// Register adds the login and logout commands to the application
func (cmd *AuthCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "login",
			Usage:     "Store an API credential",
			UsageText: "tasq login [--token TOKEN | --session-cookie VALUE]",
			Description: `Saves a bearer token or session cookie value for later commands.

Sign in through the web login page first and copy the credential from there.
Without flags you are prompted for a token. The credential is checked against
the API before it is saved.`,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "token",
					Usage:       "bearer token",
					Destination: &cmd.token,
				},
				&cli.StringFlag{
					Name:        "session-cookie",
					Usage:       "session cookie value",
					Destination: &cmd.cookie,
				},
			},
			Action: cmd.login,
		},
		&cli.Command{
			Name:      "logout",
			Usage:     "End the API session and forget the stored credential",
			UsageText: "tasq logout",
			Action:    cmd.logout,
		},
	)

	return app
}

func (cmd *AuthCmd) login(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.flags.Prefs == nil {
		return fmt.Errorf("no preferences store configured")
	}

	if cmd.token == "" && cmd.cookie == "" {
		p.Infof("Sign in at %s and paste your API token.", cmd.flags.Config.API.LoginURL)
		if err := cmd.prompt(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	session := prefs.Session{
		Token:  strings.TrimSpace(cmd.token),
		Cookie: strings.TrimSpace(cmd.cookie),
	}
	if session.IsZero() {
		return fmt.Errorf("a token or session cookie is required")
	}

	// Check the credential before storing it.
	check := *cmd.flags
	check.Token, check.Cookie = session.Token, session.Cookie
	svc, err := check.Client(ctx)
	if err != nil {
		return err
	}
	if _, err := svc.ListTasks(logging.WithOperation(ctx, "login"), ""); err != nil {
		if client.IsUnauthorized(err) {
			return fmt.Errorf("credential rejected by the server")
		}
		return fmt.Errorf("verify credential: %w", err)
	}

	if err := cmd.flags.Prefs.Update(ctx, func(pr *prefs.Prefs) { pr.Session = session }); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	p.Successf("Logged in")
	return nil
}

func (cmd *AuthCmd) prompt() error {
	return huh.NewInput().
		Title("API token").
		EchoMode(huh.EchoModePassword).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("token is required")
			}
			return nil
		}).
		Value(&cmd.token).
		Run()
}

func (cmd *AuthCmd) logout(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	svc, err := cmd.flags.Client(ctx)
	if err != nil {
		return err
	}

	if err := svc.Logout(logging.WithOperation(ctx, "logout")); err != nil {
		if client.IsNetwork(err) {
			return fmt.Errorf("network error occurred during logout: %w", err)
		}
		return fmt.Errorf("logout failed: %s", client.Message(err))
	}

	if cmd.flags.Prefs != nil {
		if err := cmd.flags.Prefs.Update(ctx, func(pr *prefs.Prefs) { pr.Session = prefs.Session{} }); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}

	p.Successf("Logged out")
	p.Printf("Sign in again at %s", cmd.flags.Config.API.LoginURL)
	return nil
}
