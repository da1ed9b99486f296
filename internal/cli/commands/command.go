package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"AidDesk/internal/cli/bootstrap"
)

// ErrUsage is returned by a command when arguments are invalid and usage should be shown.
var ErrUsage = errors.New("usage")

// Command represents a CLI subcommand.
type Command interface {
	// Name returns the command name as typed by the user, e.g. "login".
	Name() string
	// Description is a short human-readable description shown in help.
	Description() string
	// Usage returns the exact usage string, e.g. "set <field> <value>".
	Usage() string
	// Run executes the command with provided args (without the command name).
	Run(ctx context.Context, app *bootstrap.App, args []string) error
}

// registry holds available commands by name.
var registry = map[string]Command{}

// Out — общий writer для вывода CLI. По умолчанию os.Stdout, но в тестах может переназначаться.
var Out io.Writer = os.Stdout

// sections группирует команды в справке. Всё, что не перечислено, попадает в "Other".
var sections = []struct {
	title string
	names []string
}{
	{"Session", []string{"login", "logout"}},
	{"Form", []string{"show", "set", "amount", "photo-add", "photo-rm", "ack", "intro-ok", "reset"}},
	{"Submission", []string{"submit", "activity-done"}},
	{"Diagnostics", []string{"metrics"}},
}

// RegisterCmd adds a command to the registry. Should be called from init() of each command.
// Повторная регистрация имени — ошибка программиста.
func RegisterCmd(cmd Command) {
	if _, dup := registry[cmd.Name()]; dup {
		panic("commands: duplicate command " + cmd.Name())
	}
	registry[cmd.Name()] = cmd
}

// Get returns a command by name.
func Get(name string) (Command, bool) {
	c, ok := registry[name]
	return c, ok
}

// List returns all registered commands sorted by name.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

func usageLine(usage, desc string) string {
	return fmt.Sprintf("    %-34s %s", usage, desc)
}

// FormatGlobalUsage builds a help text for all commands, grouped by section.
func FormatGlobalUsage() string {
	lines := []string{
		"AidDesk CLI",
		"",
		"Usage:",
		"  aiddesk [--base-url <host:port>] [command [args]]",
		"  without a command the client reads commands from stdin",
		"",
		"  Photos and confirmations live only as long as the session: one-shot",
		"  commands share them only when SESSION_REDIS_ADDR is set, and photos",
		"  never outlive the process. Fill in and submit the form in the",
		"  interactive mode.",
	}
	seen := map[string]bool{}
	for _, sec := range sections {
		var block []string
		for _, n := range sec.names {
			if c, ok := registry[n]; ok {
				block = append(block, usageLine(c.Usage(), c.Description()))
				seen[n] = true
			}
		}
		if len(block) > 0 {
			lines = append(lines, "", "  "+sec.title+":")
			lines = append(lines, block...)
		}
	}
	var rest []string
	for _, c := range List() {
		if !seen[c.Name()] {
			rest = append(rest, usageLine(c.Usage(), c.Description()))
		}
	}
	rest = append(rest, usageLine("help [command]", "Show help"))
	lines = append(lines, "", "  Other:")
	lines = append(lines, rest...)
	return strings.Join(lines, "\n") + "\n"
}
