package domain

import (
	"context"
	"time"
)

// CommandExecutor runs external processes without shell interpretation.
type CommandExecutor interface {
	// Exec runs name with args and captures its output. With ThrowOnError set
	// (the default via DefaultExecOptions), a non-zero exit is returned as an
	// EXEC_FAILED *WorktreeError.
	Exec(ctx context.Context, name string, args []string, opts ExecOptions) (*ExecResult, error)
}

// WorktreeManager manages git worktrees.
type WorktreeManager interface {
	// List parses the live worktree listing. It is never cached.
	List(ctx context.Context, cwd string) ([]Worktree, error)

	// Create checks every precondition before mutating the repository.
	Create(ctx context.Context, opts CreateWorktreeOptions) (*Worktree, error)

	// Remove deletes a worktree by path.
	Remove(ctx context.Context, path string, force bool, cwd string) error

	// Prune clears stale worktree metadata.
	Prune(ctx context.Context, cwd string) error

	// FindByBranch returns the worktree checked out on branch, or a
	// WORKTREE_NOT_FOUND error.
	FindByBranch(ctx context.Context, branch, cwd string) (*Worktree, error)
}

// SessionRepository persists task sessions.
type SessionRepository interface {
	// Load returns the full state. A missing store is empty state.
	Load(ctx context.Context) (*State, error)

	// Save validates state before writing anything.
	Save(ctx context.Context, state *State) error

	// Add inserts or replaces the session with the same task id.
	Add(ctx context.Context, session Session) error

	// Remove deletes the session for taskID. Absent ids are not an error.
	Remove(ctx context.Context, taskID string) error

	// FindByTask returns nil when no session matches.
	FindByTask(ctx context.Context, taskID string) (*Session, error)
}

// HookRunner executes lifecycle hook commands.
type HookRunner interface {
	// Execute runs commands sequentially. A failing command is data in the
	// result list; only a shell that cannot start is an error.
	Execute(ctx context.Context, commands []string, opts HookOptions) ([]HookResult, error)

	// AfterCreate runs hooks.AfterCreate; empty lists are a no-op.
	AfterCreate(ctx context.Context, hooks HooksConfig, opts HookOptions) ([]HookResult, error)

	// BeforeDestroy runs hooks.BeforeDestroy; empty lists are a no-op.
	BeforeDestroy(ctx context.Context, hooks HooksConfig, opts HookOptions) ([]HookResult, error)
}

// TerminalAdapter spawns a terminal pane or session in a working directory.
type TerminalAdapter interface {
	Name() string
	IsAvailable(ctx context.Context) bool
	OpenSession(ctx context.Context, opts OpenSessionOptions) error
}

// OpenSessionOptions configures a terminal spawn.
type OpenSessionOptions struct {
	Env      map[string]string
	Cwd      string
	Title    string
	Commands []string
}

// TextGenerator is a conversational text-generation backend.
type TextGenerator interface {
	CreateSession(ctx context.Context, title string) (string, error)
	Prompt(ctx context.Context, sessionID, text string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// RepoInspector reads repository metadata without shelling out.
type RepoInspector interface {
	// BranchTip returns the commit hash a local branch points to.
	// ok is false when the branch does not exist.
	BranchTip(branch string) (hash string, ok bool, err error)
}

// Notifier delivers a desktop notification.
type Notifier interface {
	Notify(title, message string) error
}

// ConfigLoader loads the tool configuration.
type ConfigLoader interface {
	// Load never fails on a bad file; it returns defaults plus Warnings.
	Load() (*Config, error)
}

// Logger writes structured log lines. An empty taskID logs globally.
type Logger interface {
	Debug(taskID, category, msg string)
	Info(taskID, category, msg string)
	Warn(taskID, category, msg string)
	Error(taskID, category, msg string)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(_, _, _ string) {}
func (NopLogger) Info(_, _, _ string)  {}
func (NopLogger) Warn(_, _, _ string)  {}
func (NopLogger) Error(_, _, _ string) {}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
