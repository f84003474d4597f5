// Package executor runs external processes (git, shells, terminal CLIs).
package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/taskforge/transmute/internal/domain"
)

// Client implements domain.CommandExecutor using os/exec.
type Client struct{}

// NewClient creates a new command executor client.
func NewClient() *Client {
	return &Client{}
}

// Ensure Client implements domain.CommandExecutor interface.
var _ domain.CommandExecutor = (*Client)(nil)

// Exec runs name with args. No shell is involved, so arguments are never
// reinterpreted. A process that cannot be started is reported as EXEC_FAILED
// with exit code -1 regardless of ThrowOnError.
func (c *Client) Exec(ctx context.Context, name string, args []string, opts domain.ExecOptions) (*domain.ExecResult, error) {
	// #nosec G204 - name and args come from trusted infra code, never from a shell string
	cmd := exec.CommandContext(ctx, name, args...)
	if opts.Cwd != "" {
		cmd.Dir = opts.Cwd
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	result := &domain.ExecResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			result.ExitCode = -1
			return result, domain.NewExecError(domain.CommandLine(name, args), runErr.Error(), -1)
		}
		result.ExitCode = exitErr.ExitCode()
	}

	if result.ExitCode != 0 && opts.ThrowOnError {
		return result, domain.NewExecError(domain.CommandLine(name, args), failureOutput(result), result.ExitCode)
	}
	return result, nil
}

// failureOutput prefers stderr and falls back to stdout.
func failureOutput(r *domain.ExecResult) string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(r.Stdout)
}

// Git runs git with domain error translation: a failure whose output says
// "not a git repository" becomes NO_GIT_REPO.
func Git(ctx context.Context, exec domain.CommandExecutor, args []string, opts domain.ExecOptions) (*domain.ExecResult, error) {
	result, err := exec.Exec(ctx, "git", args, opts)
	if err != nil {
		var we *domain.WorktreeError
		if errors.As(err, &we) && strings.Contains(strings.ToLower(we.Stderr), "not a git repository") {
			return result, domain.NewNoGitRepoError(opts.Cwd)
		}
		return result, err
	}
	if result != nil && result.ExitCode != 0 && strings.Contains(strings.ToLower(result.Stderr), "not a git repository") {
		return result, domain.NewNoGitRepoError(opts.Cwd)
	}
	return result, nil
}

// GitRoot returns the top-level directory of the repository containing cwd.
func GitRoot(ctx context.Context, exec domain.CommandExecutor, cwd string) (string, error) {
	result, err := Git(ctx, exec, []string{"rev-parse", "--show-toplevel"}, domain.DefaultExecOptions(cwd))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Stdout), nil
}
