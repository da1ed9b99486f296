package commands

import (
	"context"
	"errors"
	"fmt"

	"AidDesk/internal/cli/bootstrap"
	"AidDesk/internal/cli/formstate"
	"AidDesk/internal/cli/pending"
)

type submitCmd struct{}

func (submitCmd) Name() string        { return "submit" }
func (submitCmd) Description() string { return "Upload photos and send the application" }
func (submitCmd) Usage() string       { return "submit" }

func (submitCmd) Run(ctx context.Context, app *bootstrap.App, _ []string) error {
	out := app.Form.Submit(ctx)
	if out == formstate.OutcomeBusy {
		fmt.Fprintln(Out, "Заявка уже отправляется")
		return nil
	}
	renderNotices(Out, app.Form.Snapshot())
	return nil
}

type activityDoneCmd struct{}

func (activityDoneCmd) Name() string        { return "activity-done" }
func (activityDoneCmd) Description() string { return "Resend the application after the required activity" }
func (activityDoneCmd) Usage() string       { return "activity-done" }

func (activityDoneCmd) Run(ctx context.Context, app *bootstrap.App, _ []string) error {
	err := app.Form.ResumePending(ctx)
	if errors.Is(err, pending.ErrNothingPending) {
		fmt.Fprintln(Out, "Нет отложенной заявки")
		return nil
	}
	if err != nil {
		return err
	}
	renderNotices(Out, app.Form.Snapshot())
	return nil
}

func init() {
	RegisterCmd(submitCmd{})
	RegisterCmd(activityDoneCmd{})
}
