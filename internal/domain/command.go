package domain

import "strings"

// ExecOptions configures a single process invocation.
type ExecOptions struct {
	Cwd string
	// ThrowOnError turns a non-zero exit into an EXEC_FAILED error.
	ThrowOnError bool
}

// DefaultExecOptions returns options for cwd with ThrowOnError enabled.
func DefaultExecOptions(cwd string) ExecOptions {
	return ExecOptions{Cwd: cwd, ThrowOnError: true}
}

// ExecResult is the captured outcome of a finished process.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports a zero exit code.
func (r *ExecResult) Success() bool {
	return r != nil && r.ExitCode == 0
}

// CommandLine joins name and args for error messages and logs.
func CommandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
