package terminal

import (
	"context"
	"strings"

	"github.com/taskforge/transmute/internal/domain"
)

// Wezterm opens panes with `wezterm cli spawn`.
type Wezterm struct {
	exec domain.CommandExecutor
}

// NewWezterm creates a WezTerm adapter.
func NewWezterm(exec domain.CommandExecutor) *Wezterm {
	return &Wezterm{exec: exec}
}

// Ensure Wezterm implements domain.TerminalAdapter interface.
var _ domain.TerminalAdapter = (*Wezterm)(nil)

// Name returns "wezterm".
func (w *Wezterm) Name() string { return string(domain.TerminalWezterm) }

// IsAvailable runs `wezterm --version`.
func (w *Wezterm) IsAvailable(ctx context.Context) bool {
	_, ok := query(ctx, w.exec, "wezterm", "--version")
	return ok
}

// Version returns the version string without the "wezterm " prefix.
func (w *Wezterm) Version(ctx context.Context) (string, bool) {
	res, ok := query(ctx, w.exec, "wezterm", "--version")
	if !ok {
		return "", false
	}
	v := strings.TrimSpace(res.Stdout)
	return strings.TrimSpace(strings.TrimPrefix(v, "wezterm")), true
}

// OpenSession spawns a pane in opts.Cwd. The tab title is set afterwards and
// a failure to set it is ignored.
func (w *Wezterm) OpenSession(ctx context.Context, opts domain.OpenSessionOptions) error {
	if !w.IsAvailable(ctx) {
		return domain.NewTerminalNotAvailableError(w.Name())
	}

	args := []string{"cli", "spawn", "--cwd", opts.Cwd}
	if argv := w.program(opts); len(argv) > 0 {
		args = append(args, "--")
		args = append(args, argv...)
	}

	res, err := w.exec.Exec(ctx, "wezterm", args, domain.ExecOptions{})
	if spawnErr := spawnError(w.Name(), opts.Cwd, res, err); spawnErr != nil {
		return spawnErr
	}

	paneID := strings.TrimSpace(res.Stdout)
	if opts.Title != "" && paneID != "" {
		_, _ = w.exec.Exec(ctx, "wezterm", []string{"cli", "set-tab-title", "--pane-id", paneID, opts.Title}, domain.ExecOptions{})
	}
	return nil
}

// program builds the argv run in the new pane. WezTerm has no flag for
// environment variables, so they are passed through env(1).
func (w *Wezterm) program(opts domain.OpenSessionOptions) []string {
	script := joinCommands(opts.Commands)
	if script == "" && len(opts.Env) == 0 {
		return nil
	}
	if script == "" {
		script = `exec "${SHELL:-sh}"`
	}
	var argv []string
	if len(opts.Env) > 0 {
		argv = append([]string{"env"}, sortedEnv(opts.Env)...)
	}
	return append(argv, "sh", "-c", script)
}
