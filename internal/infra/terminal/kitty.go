package terminal

import (
	"context"
	"strings"

	"github.com/taskforge/transmute/internal/domain"
)

// Kitty opens tabs through kitty's remote control protocol.
type Kitty struct {
	exec domain.CommandExecutor
}

// NewKitty creates a kitty adapter. Remote control must be enabled in kitty.conf.
func NewKitty(exec domain.CommandExecutor) *Kitty {
	return &Kitty{exec: exec}
}

// Ensure Kitty implements domain.TerminalAdapter interface.
var _ domain.TerminalAdapter = (*Kitty)(nil)

// Name returns "kitty".
func (k *Kitty) Name() string { return string(domain.TerminalKitty) }

// IsAvailable runs `kitty --version`.
func (k *Kitty) IsAvailable(ctx context.Context) bool {
	_, ok := query(ctx, k.exec, "kitty", "--version")
	return ok
}

// Version returns the version reported by kitty, e.g. "0.35.2".
func (k *Kitty) Version(ctx context.Context) (string, bool) {
	res, ok := query(ctx, k.exec, "kitty", "--version")
	if !ok {
		return "", false
	}
	fields := strings.Fields(res.Stdout)
	if len(fields) >= 2 {
		return fields[1], true
	}
	return strings.TrimSpace(res.Stdout), true
}

// OpenSession launches a new tab in opts.Cwd.
func (k *Kitty) OpenSession(ctx context.Context, opts domain.OpenSessionOptions) error {
	if !k.IsAvailable(ctx) {
		return domain.NewTerminalNotAvailableError(k.Name())
	}

	args := []string{"@", "launch", "--type=tab", "--cwd", opts.Cwd}
	if opts.Title != "" {
		args = append(args, "--tab-title", opts.Title)
	}
	for _, kv := range sortedEnv(opts.Env) {
		args = append(args, "--env", kv)
	}
	if script := joinCommands(opts.Commands); script != "" {
		args = append(args, "sh", "-c", script)
	}

	res, err := k.exec.Exec(ctx, "kitty", args, domain.ExecOptions{})
	return spawnError(k.Name(), opts.Cwd, res, err)
}
