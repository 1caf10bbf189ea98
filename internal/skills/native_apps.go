package skills

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// AppsSkill launches applications through shell command lines declared in
// the configuration. Only configured app names can be launched; arbitrary
// command text from a slot is never executed.
type AppsSkill struct {
	*Base
	commands map[string]string
}

// NewAppsSkill returns a builder bound to the configured app command map.
func NewAppsSkill(commands map[string]string) Builder {
	return func(_ Host) (Skill, error) {
		return &AppsSkill{
			Base:     NewBase("AppsSkill", "Opens configured applications", []string{"app.open", "app.list"}),
			commands: commands,
		}, nil
	}
}

func (s *AppsSkill) Handle(ctx context.Context, intent string, slots map[string]any, host Host) bool {
	switch intent {
	case "app.open":
		return s.open(ctx, slots, host)
	case "app.list":
		names := make([]string, 0, len(s.commands))
		for name := range s.commands {
			names = append(names, name)
		}
		host.Show(ListReply(fmt.Sprintf("I know %d applications.", len(names)), names))
		return true
	}
	return false
}

func (s *AppsSkill) open(ctx context.Context, slots map[string]any, host Host) bool {
	name := strings.ToLower(slotString(slots, "app"))
	if name == "" {
		host.Show(ErrorReply("Which application should I open?"))
		return false
	}
	line, ok := s.commands[name]
	if !ok {
		host.Show(ErrorReply(fmt.Sprintf("I don't know an application called %q.", name)))
		return false
	}

	file, err := syntax.NewParser().Parse(strings.NewReader(line), name)
	if err != nil {
		slog.Error("app command does not parse", "app", name, "error", err)
		host.Show(ErrorReply(fmt.Sprintf("The command for %q is invalid.", name)))
		return false
	}

	runner, err := interp.New(
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(nil, io.Discard, io.Discard),
	)
	if err != nil {
		slog.Error("app runner init failed", "app", name, "error", err)
		return false
	}

	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := runner.Run(runCtx, file); err != nil {
		slog.Error("app launch failed", "app", name, "error", err)
		host.Show(ErrorReply(fmt.Sprintf("Opening %s failed.", name)))
		return false
	}

	host.Say(fmt.Sprintf("Opening %s.", name))
	return true
}

var _ Skill = (*AppsSkill)(nil)
