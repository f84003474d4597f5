// Package terminal provides domain.TerminalAdapter implementations for
// terminal emulators and multiplexers.
package terminal

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/taskforge/transmute/internal/domain"
)

// New returns the adapter for name. TerminalNone yields a nil adapter.
func New(name domain.TerminalType, exec domain.CommandExecutor) (domain.TerminalAdapter, error) {
	switch name {
	case domain.TerminalWezterm:
		return NewWezterm(exec), nil
	case domain.TerminalTmux:
		return NewTmux(exec), nil
	case domain.TerminalKitty:
		return NewKitty(exec), nil
	case domain.TerminalNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTerminal, name)
	}
}

// All returns one adapter of every supported kind, in preference order.
func All(exec domain.CommandExecutor) []domain.TerminalAdapter {
	return []domain.TerminalAdapter{NewWezterm(exec), NewTmux(exec), NewKitty(exec)}
}

// Availability reports whether an adapter can be used.
type Availability struct {
	Name      string `json:"name"`
	Version   string `json:"version,omitempty"`
	Available bool   `json:"available"`
}

// versioner is implemented by adapters that can report their version.
type versioner interface {
	Version(ctx context.Context) (string, bool)
}

// CheckAvailability checks every adapter.
func CheckAvailability(ctx context.Context, adapters []domain.TerminalAdapter) []Availability {
	out := make([]Availability, 0, len(adapters))
	for _, a := range adapters {
		av := Availability{Name: a.Name(), Available: a.IsAvailable(ctx)}
		if v, ok := a.(versioner); ok && av.Available {
			av.Version, _ = v.Version(ctx)
		}
		out = append(out, av)
	}
	return out
}

// FirstAvailable returns the first usable adapter, or nil.
func FirstAvailable(ctx context.Context, adapters []domain.TerminalAdapter) domain.TerminalAdapter {
	for _, a := range adapters {
		if a.IsAvailable(ctx) {
			return a
		}
	}
	return nil
}

// query runs a command and reports whether it exited cleanly.
func query(ctx context.Context, exec domain.CommandExecutor, name string, args ...string) (*domain.ExecResult, bool) {
	res, err := exec.Exec(ctx, name, args, domain.ExecOptions{})
	if err != nil || res == nil || res.ExitCode != 0 {
		return res, false
	}
	return res, true
}

// joinCommands chains commands with && so a failure stops the rest.
func joinCommands(commands []string) string {
	return strings.Join(commands, " && ")
}

// sortedEnv renders env as K=V pairs in key order.
func sortedEnv(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+env[k])
	}
	return pairs
}

var invalidPathMarkers = []string{
	"no such file or directory",
	"not a directory",
	"does not exist",
}

// spawnError maps the outcome of a spawn command onto the terminal error
// taxonomy. Callers only ever see *domain.TerminalError.
func spawnError(terminal, cwd string, res *domain.ExecResult, err error) error {
	if err != nil {
		return domain.NewTerminalSpawnError(terminal, err.Error())
	}
	if res == nil || res.ExitCode == 0 {
		return nil
	}
	output := strings.TrimSpace(res.Stderr)
	if output == "" {
		output = strings.TrimSpace(res.Stdout)
	}
	lower := strings.ToLower(output)
	for _, marker := range invalidPathMarkers {
		if strings.Contains(lower, marker) {
			return domain.NewInvalidPathError(cwd)
		}
	}
	if output == "" {
		output = fmt.Sprintf("exit code %d", res.ExitCode)
	}
	return domain.NewTerminalSpawnError(terminal, output)
}
