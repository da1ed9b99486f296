package commands

import (
	"context"
	"fmt"

	"AidDesk/internal/cli/auth"
	"AidDesk/internal/cli/bootstrap"
)

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Store auth token and reopen the form" }
func (loginCmd) Usage() string       { return "login <token>" }

func (loginCmd) Run(ctx context.Context, app *bootstrap.App, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	c, err := auth.Inspect(args[0])
	if err != nil {
		return err
	}
	app.Form.Flush()
	if err := app.Tokens.Save(args[0]); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	app.Form.Mount(ctx)
	if app.Form.Snapshot().User == nil {
		return fmt.Errorf("server rejected token for %q", c.Subject)
	}
	fmt.Fprintf(Out, "Logged in as %s\n", c.Subject)
	return nil
}

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Forget auth token" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(ctx context.Context, app *bootstrap.App, args []string) error {
	app.Form.Flush()
	if err := app.Tokens.Clear(); err != nil {
		return err
	}
	app.Form.Mount(ctx)
	fmt.Fprintln(Out, "Logged out")
	return nil
}

func init() {
	RegisterCmd(loginCmd{})
	RegisterCmd(logoutCmd{})
}
