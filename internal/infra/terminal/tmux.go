package terminal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/taskforge/transmute/internal/domain"
)

// Tmux opens a window in the current tmux client, or a detached session when
// not running inside tmux.
type Tmux struct {
	exec   domain.CommandExecutor
	getenv func(string) string
}

// NewTmux creates a tmux adapter.
func NewTmux(exec domain.CommandExecutor) *Tmux {
	return &Tmux{exec: exec, getenv: os.Getenv}
}

// Ensure Tmux implements domain.TerminalAdapter interface.
var _ domain.TerminalAdapter = (*Tmux)(nil)

// Name returns "tmux".
func (t *Tmux) Name() string { return string(domain.TerminalTmux) }

// IsAvailable runs `tmux -V`.
func (t *Tmux) IsAvailable(ctx context.Context) bool {
	_, ok := query(ctx, t.exec, "tmux", "-V")
	return ok
}

// Version returns the tmux version, e.g. "3.4".
func (t *Tmux) Version(ctx context.Context) (string, bool) {
	res, ok := query(ctx, t.exec, "tmux", "-V")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(res.Stdout), "tmux")), true
}

// OpenSession creates the window or session in opts.Cwd.
func (t *Tmux) OpenSession(ctx context.Context, opts domain.OpenSessionOptions) error {
	if !t.IsAvailable(ctx) {
		return domain.NewTerminalNotAvailableError(t.Name())
	}
	// tmux falls back to the home directory for a missing -c path instead of failing.
	if _, err := os.Stat(opts.Cwd); errors.Is(err, os.ErrNotExist) {
		return domain.NewInvalidPathError(opts.Cwd)
	}

	var args []string
	if t.getenv("TMUX") != "" {
		args = []string{"new-window", "-c", opts.Cwd}
		if opts.Title != "" {
			args = append(args, "-n", opts.Title)
		}
	} else {
		args = []string{"new-session", "-d", "-c", opts.Cwd}
		if opts.Title != "" {
			args = append(args, "-s", t.freeSessionName(ctx, sessionName(opts.Title)))
		}
	}
	for _, kv := range sortedEnv(opts.Env) {
		args = append(args, "-e", kv)
	}
	if script := joinCommands(opts.Commands); script != "" {
		args = append(args, "sh", "-c", script)
	}

	res, err := t.exec.Exec(ctx, "tmux", args, domain.ExecOptions{Cwd: opts.Cwd})
	return spawnError(t.Name(), opts.Cwd, res, err)
}

// freeSessionName returns name, or name-2, name-3... when a session with that
// name is already running, e.g. when a task is resumed twice.
func (t *Tmux) freeSessionName(ctx context.Context, name string) string {
	candidate := name
	for i := 2; i < 100; i++ {
		if _, exists := query(ctx, t.exec, "tmux", "has-session", "-t", "="+candidate); !exists {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", name, i)
	}
	return candidate
}

// sessionName strips characters tmux reserves in target names.
func sessionName(title string) string {
	return strings.NewReplacer(".", "-", ":", "-").Replace(title)
}
