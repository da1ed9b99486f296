package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"AidDesk/internal/cli/bootstrap"
	"AidDesk/internal/cli/model"
)

type showCmd struct{}

func (showCmd) Name() string        { return "show" }
func (showCmd) Description() string { return "Print the application form" }
func (showCmd) Usage() string       { return "show" }

func (showCmd) Run(_ context.Context, app *bootstrap.App, _ []string) error {
	render(Out, app)
	return nil
}

type setCmd struct{}

func (setCmd) Name() string        { return "set" }
func (setCmd) Description() string { return "Edit a text field (title|summary|story|bank|payment)" }
func (setCmd) Usage() string       { return "set <field> <value>" }

func (setCmd) Run(_ context.Context, app *bootstrap.App, args []string) error {
	if len(args) < 1 {
		return ErrUsage
	}
	value := strings.Join(args[1:], " ")
	switch strings.ToLower(args[0]) {
	case "title":
		app.Form.SetTitle(value)
	case "summary":
		app.Form.SetSummary(value)
	case "story":
		app.Form.SetStory(value)
	case "bank":
		app.Form.SetBankName(value)
	case "payment":
		app.Form.SetPayment(value)
	default:
		return ErrUsage
	}
	return nil
}

type amountCmd struct{}

func (amountCmd) Name() string        { return "amount" }
func (amountCmd) Description() string { return "Type into the amount field; @N sets the caret" }
func (amountCmd) Usage() string       { return "amount <text> [@caret]" }

func (amountCmd) Run(_ context.Context, app *bootstrap.App, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	caret := -1
	if last := args[len(args)-1]; strings.HasPrefix(last, "@") {
		n, err := strconv.Atoi(last[1:])
		if err != nil || n < 0 {
			return ErrUsage
		}
		caret = n
		args = args[:len(args)-1]
	}
	raw := strings.Join(args, " ")
	if caret < 0 {
		caret = utf8.RuneCountInString(raw)
	}
	app.Form.SetAmountInput(raw, caret)
	app.Scheduler.Flush()
	v := app.Form.Snapshot()
	fmt.Fprintf(Out, "Сумма: %s ₽ (каретка %d)\n", v.AmountDisplay, v.Caret)
	return nil
}

type photoAddCmd struct{}

func (photoAddCmd) Name() string        { return "photo-add" }
func (photoAddCmd) Description() string { return "Attach photos from disk" }
func (photoAddCmd) Usage() string       { return "photo-add <path> [path...]" }

func (photoAddCmd) Run(_ context.Context, app *bootstrap.App, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	for _, p := range args {
		ph, err := model.NewLocalPhoto(p)
		if err != nil {
			return err
		}
		if err := app.Form.AddPhoto(ph); err != nil {
			return err
		}
		fmt.Fprintf(Out, "Добавлено: %s\n", ph.Name())
	}
	return nil
}

type photoRmCmd struct{}

func (photoRmCmd) Name() string        { return "photo-rm" }
func (photoRmCmd) Description() string { return "Remove a photo by index" }
func (photoRmCmd) Usage() string       { return "photo-rm <index>" }

func (photoRmCmd) Run(_ context.Context, app *bootstrap.App, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return ErrUsage
	}
	return app.Form.RemovePhoto(i)
}

type ackCmd struct{}

func (ackCmd) Name() string        { return "ack" }
func (ackCmd) Description() string { return "Confirm trust terms or platform rules" }
func (ackCmd) Usage() string       { return "ack <trust|policies> [off]" }

func (ackCmd) Run(ctx context.Context, app *bootstrap.App, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	on := true
	if len(args) == 2 {
		if strings.ToLower(args[1]) != "off" {
			return ErrUsage
		}
		on = false
	}
	switch strings.ToLower(args[0]) {
	case "trust":
		app.Form.SetTrustAcknowledged(ctx, on)
	case "policies":
		app.Form.SetPoliciesAccepted(ctx, on)
	default:
		return ErrUsage
	}
	return nil
}

type introCmd struct{}

func (introCmd) Name() string        { return "intro-ok" }
func (introCmd) Description() string { return "Dismiss the introduction for good" }
func (introCmd) Usage() string       { return "intro-ok" }

func (introCmd) Run(ctx context.Context, app *bootstrap.App, _ []string) error {
	app.Form.AcknowledgeIntro(ctx)
	return nil
}

type resetCmd struct{}

func (resetCmd) Name() string        { return "reset" }
func (resetCmd) Description() string { return "Clear the form and start a new draft" }
func (resetCmd) Usage() string       { return "reset" }

func (resetCmd) Run(ctx context.Context, app *bootstrap.App, _ []string) error {
	app.Form.Reset(ctx)
	fmt.Fprintln(Out, "Форма очищена")
	return nil
}

func init() {
	RegisterCmd(showCmd{})
	RegisterCmd(setCmd{})
	RegisterCmd(amountCmd{})
	RegisterCmd(photoAddCmd{})
	RegisterCmd(photoRmCmd{})
	RegisterCmd(ackCmd{})
	RegisterCmd(introCmd{})
	RegisterCmd(resetCmd{})
}
