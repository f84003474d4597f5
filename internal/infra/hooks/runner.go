// Package hooks runs lifecycle hook commands through the shell.
package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/taskforge/transmute/internal/domain"
)

// Shell is the interpreter each hook command is passed to with -c.
const Shell = "sh"

// Runner implements domain.HookRunner.
type Runner struct {
	log     domain.Logger
	envFile string
	shell   string
}

// Ensure Runner implements domain.HookRunner interface.
var _ domain.HookRunner = (*Runner)(nil)

// NewRunner creates a hook runner. envFile is an optional dotenv file whose
// variables sit below the process environment.
func NewRunner(envFile string, log domain.Logger) *Runner {
	if log == nil {
		log = domain.NopLogger{}
	}
	return &Runner{envFile: envFile, log: log, shell: Shell}
}

// Execute runs commands one after another in opts.Cwd. Unless
// ContinueOnError is set, the run ends at the first failing command, which is
// still included in the results. A command that fails is never an error; only a shell that cannot
// be started is.
func (r *Runner) Execute(ctx context.Context, commands []string, opts domain.HookOptions) ([]domain.HookResult, error) {
	results := make([]domain.HookResult, 0, len(commands))
	if len(commands) == 0 {
		return results, nil
	}
	env := r.environ(opts.Env)

	for _, command := range commands {
		result, err := r.run(ctx, command, opts.Cwd, env)
		if err != nil {
			return results, err
		}
		results = append(results, result)

		if !result.Success {
			r.log.Warn("", "hooks", fmt.Sprintf("hook failed (exit %d): %s", result.ExitCode, command))
			if !opts.ContinueOnError {
				break
			}
		} else {
			r.log.Debug("", "hooks", fmt.Sprintf("hook ok in %s: %s", result.Duration.Round(time.Millisecond), command))
		}
	}
	return results, nil
}

// AfterCreate runs the after-create hooks.
func (r *Runner) AfterCreate(ctx context.Context, hooks domain.HooksConfig, opts domain.HookOptions) ([]domain.HookResult, error) {
	return r.Execute(ctx, hooks.AfterCreate, opts)
}

// BeforeDestroy runs the before-destroy hooks.
func (r *Runner) BeforeDestroy(ctx context.Context, hooks domain.HooksConfig, opts domain.HookOptions) ([]domain.HookResult, error) {
	return r.Execute(ctx, hooks.BeforeDestroy, opts)
}

func (r *Runner) run(ctx context.Context, command, cwd string, env []string) (domain.HookResult, error) {
	// #nosec G204 - hook commands come from the repository's own config file
	cmd := exec.CommandContext(ctx, r.shell, "-c", command)
	cmd.Dir = cwd
	cmd.Env = env
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	result := domain.HookResult{
		Command:  command,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return result, fmt.Errorf("start shell for hook %q: %w", command, runErr)
		}
		result.ExitCode = exitErr.ExitCode()
	}
	result.Success = result.ExitCode == 0
	return result, nil
}

// environ layers the dotenv file, the process environment and overrides, in
// increasing priority.
func (r *Runner) environ(overrides map[string]string) []string {
	merged := map[string]string{}
	if r.envFile != "" {
		vars, err := godotenv.Read(r.envFile)
		switch {
		case err == nil:
			for k, v := range vars {
				merged[k] = v
			}
		case !errors.Is(err, os.ErrNotExist):
			r.log.Warn("", "hooks", fmt.Sprintf("ignoring env file %s: %v", r.envFile, err))
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			merged[k] = v
		}
	}
	for k, v := range overrides {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+merged[k])
	}
	return env
}
