package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable, machine-readable error kind.
type ErrorCode string

// Worktree domain error codes.
const (
	CodeBranchExists     ErrorCode = "BRANCH_EXISTS"
	CodeDirExists        ErrorCode = "DIR_EXISTS"
	CodeNoGitRepo        ErrorCode = "NO_GIT_REPO"
	CodeBaseNotFound     ErrorCode = "BASE_NOT_FOUND"
	CodeWorktreeNotFound ErrorCode = "WORKTREE_NOT_FOUND"
	CodeExecFailed       ErrorCode = "EXEC_FAILED"
)

// Terminal domain error codes.
const (
	CodeNotAvailable ErrorCode = "NOT_AVAILABLE"
	CodeSpawnFailed  ErrorCode = "SPAWN_FAILED"
	CodeInvalidPath  ErrorCode = "INVALID_PATH"
)

// Code sentinels. Compare with errors.Is; the concrete error carries the context.
var (
	ErrBranchExists     = &codeError{CodeBranchExists}
	ErrDirExists        = &codeError{CodeDirExists}
	ErrNoGitRepo        = &codeError{CodeNoGitRepo}
	ErrBaseNotFound     = &codeError{CodeBaseNotFound}
	ErrWorktreeNotFound = &codeError{CodeWorktreeNotFound}
	ErrExecFailed       = &codeError{CodeExecFailed}
	ErrNotAvailable     = &codeError{CodeNotAvailable}
	ErrSpawnFailed      = &codeError{CodeSpawnFailed}
	ErrInvalidPath      = &codeError{CodeInvalidPath}
)

// Domain errors outside the coded taxonomy.
var (
	ErrSessionIDRequired = errors.New("opencode session id is required to create a new session")
	ErrSessionNotFound   = errors.New("session not found")
	ErrStateParse        = errors.New("invalid JSON in state file")
	ErrStateInvalid      = errors.New("state file failed validation")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrUnknownTerminal   = errors.New("unknown terminal")
	ErrAIUnavailable     = errors.New("text generation backend unavailable")
)

type codeError struct {
	code ErrorCode
}

func (e *codeError) Error() string { return string(e.code) }

// WorktreeError is returned by the exec, git and worktree layers.
type WorktreeError struct {
	Code     ErrorCode
	Branch   string
	Path     string
	Command  string
	Stderr   string
	ExitCode int
}

// Error implements error.
func (e *WorktreeError) Error() string {
	switch e.Code {
	case CodeBranchExists:
		return fmt.Sprintf("branch '%s' already exists and is checked out in a worktree", e.Branch)
	case CodeDirExists:
		return fmt.Sprintf("directory '%s' already exists; choose a different path or remove it", e.Path)
	case CodeNoGitRepo:
		return fmt.Sprintf("not a git repository: '%s'", e.Path)
	case CodeBaseNotFound:
		return fmt.Sprintf("base branch '%s' not found; verify the name or fetch from remote", e.Branch)
	case CodeWorktreeNotFound:
		return fmt.Sprintf("worktree for branch '%s' not found", e.Branch)
	case CodeExecFailed:
		return fmt.Sprintf("command failed: %s (exit code %d): %s", e.Command, e.ExitCode, e.Stderr)
	default:
		return string(e.Code)
	}
}

// Is matches the code sentinels.
func (e *WorktreeError) Is(target error) bool {
	var ce *codeError
	if errors.As(target, &ce) {
		return ce.code == e.Code
	}
	return false
}

// TerminalError is returned by terminal adapters.
type TerminalError struct {
	Code     ErrorCode
	Terminal string
	Reason   string
	Path     string
}

// Error implements error.
func (e *TerminalError) Error() string {
	switch e.Code {
	case CodeNotAvailable:
		return fmt.Sprintf("terminal '%s' is not available; install it or check your PATH", e.Terminal)
	case CodeSpawnFailed:
		return fmt.Sprintf("failed to spawn terminal session in '%s': %s", e.Terminal, e.Reason)
	case CodeInvalidPath:
		return fmt.Sprintf("invalid path: '%s'; the directory does not exist or is not accessible", e.Path)
	default:
		return string(e.Code)
	}
}

// Is matches the code sentinels.
func (e *TerminalError) Is(target error) bool {
	var ce *codeError
	if errors.As(target, &ce) {
		return ce.code == e.Code
	}
	return false
}

// NewBranchExistsError reports a branch already checked out in a worktree.
func NewBranchExistsError(branch string) *WorktreeError {
	return &WorktreeError{Code: CodeBranchExists, Branch: branch}
}

// NewDirExistsError reports an occupied target directory.
func NewDirExistsError(path string) *WorktreeError {
	return &WorktreeError{Code: CodeDirExists, Path: path}
}

// NewNoGitRepoError reports a directory outside any git repository.
func NewNoGitRepoError(path string) *WorktreeError {
	return &WorktreeError{Code: CodeNoGitRepo, Path: path}
}

// NewBaseNotFoundError reports a missing base branch.
func NewBaseNotFoundError(branch string) *WorktreeError {
	return &WorktreeError{Code: CodeBaseNotFound, Branch: branch}
}

// NewWorktreeNotFoundError reports a branch without a worktree.
func NewWorktreeNotFoundError(branch string) *WorktreeError {
	return &WorktreeError{Code: CodeWorktreeNotFound, Branch: branch}
}

// NewExecError reports a failed or unspawnable process. exitCode is -1 when
// the process could not be started.
func NewExecError(command, stderr string, exitCode int) *WorktreeError {
	return &WorktreeError{Code: CodeExecFailed, Command: command, Stderr: stderr, ExitCode: exitCode}
}

// NewTerminalNotAvailableError reports a terminal emulator missing from PATH.
func NewTerminalNotAvailableError(terminal string) *TerminalError {
	return &TerminalError{Code: CodeNotAvailable, Terminal: terminal}
}

// NewTerminalSpawnError reports a failed pane/session spawn.
func NewTerminalSpawnError(terminal, reason string) *TerminalError {
	return &TerminalError{Code: CodeSpawnFailed, Terminal: terminal, Reason: reason}
}

// NewInvalidPathError reports a working directory the terminal could not enter.
func NewInvalidPathError(path string) *TerminalError {
	return &TerminalError{Code: CodeInvalidPath, Path: path}
}

// CodeOf returns the taxonomy code carried by err, or "" when err is outside it.
func CodeOf(err error) ErrorCode {
	var we *WorktreeError
	if errors.As(err, &we) {
		return we.Code
	}
	var te *TerminalError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// ValidationError identifies the offending input field.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap lets callers test with errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
