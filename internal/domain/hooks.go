package domain

import "time"

// HooksConfig lists shell commands run at lifecycle points.
type HooksConfig struct {
	AfterCreate   []string `json:"afterCreate,omitempty" toml:"afterCreate,omitempty" yaml:"afterCreate,omitempty"`
	BeforeDestroy []string `json:"beforeDestroy,omitempty" toml:"beforeDestroy,omitempty" yaml:"beforeDestroy,omitempty"`
}

// HookOptions configures a hook phase. The zero value stops at the first
// failing command.
type HookOptions struct {
	Env             map[string]string
	Cwd             string
	ContinueOnError bool
}

// HookResult is the outcome of one hook command.
type HookResult struct {
	Command  string        `json:"command"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	Duration time.Duration `json:"duration"`
	ExitCode int           `json:"exitCode"`
	Success  bool          `json:"success"`
}

// FailedHooks returns the results that did not succeed.
func FailedHooks(results []HookResult) []HookResult {
	var failed []HookResult
	for _, r := range results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}
