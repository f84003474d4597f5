package domain

import (
	"fmt"
	"strings"
)

// TerminalType names a supported terminal emulator.
type TerminalType string

// Supported terminals. TerminalNone disables terminal integration.
const (
	TerminalWezterm TerminalType = "wezterm"
	TerminalTmux    TerminalType = "tmux"
	TerminalKitty   TerminalType = "kitty"
	TerminalNone    TerminalType = "none"
)

// IsValid reports whether t is a known terminal type.
func (t TerminalType) IsValid() bool {
	switch t {
	case TerminalWezterm, TerminalTmux, TerminalKitty, TerminalNone:
		return true
	}
	return false
}

// Session store backends.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// Config represents the tool configuration. Every field has a documented
// default in NewDefaultConfig; a config file only needs the fields it changes.
type Config struct {
	Hooks               HooksConfig  `json:"hooks" toml:"hooks" yaml:"hooks"`
	WorktreesDir        string       `json:"worktreesDir" toml:"worktreesDir" yaml:"worktreesDir"`                   // Default "./worktrees"
	DefaultBranchType   BranchType   `json:"defaultBranchType" toml:"defaultBranchType" yaml:"defaultBranchType"`    // Default "feat"
	Terminal            TerminalType `json:"terminal" toml:"terminal" yaml:"terminal"`                               // Default "wezterm"
	DefaultBaseBranch   string       `json:"defaultBaseBranch" toml:"defaultBaseBranch" yaml:"defaultBaseBranch"`    // Default "main"
	SessionStore        string       `json:"sessionStore" toml:"sessionStore" yaml:"sessionStore"`                   // "json" (default) or "sqlite"
	OpencodeServerURL   string       `json:"opencodeServerUrl" toml:"opencodeServerUrl" yaml:"opencodeServerUrl"`    // Empty disables AI naming
	LogLevel            string       `json:"logLevel" toml:"logLevel" yaml:"logLevel"`                               // debug, info, warn, error
	EnvFile             string       `json:"envFile" toml:"envFile" yaml:"envFile"`                                  // Default ".opencode/.env"
	Source              string       `json:"-" toml:"-" yaml:"-"`                                                    // File the config was read from; empty for defaults
	Warnings            []string     `json:"-" toml:"-" yaml:"-"`                                                    // Problems found while loading
	MaxBranchSlugLength int          `json:"maxBranchSlugLength" toml:"maxBranchSlugLength" yaml:"maxBranchSlugLength"` // Default 40
	AutoOpenTerminal    bool         `json:"autoOpenTerminal" toml:"autoOpenTerminal" yaml:"autoOpenTerminal"`
	AutoRunHooks        bool         `json:"autoRunHooks" toml:"autoRunHooks" yaml:"autoRunHooks"`
	UseAIBranchNaming   bool         `json:"useAiBranchNaming" toml:"useAiBranchNaming" yaml:"useAiBranchNaming"`
	Notify              bool         `json:"notify" toml:"notify" yaml:"notify"`
}

// DefaultAfterCreateHook installs node dependencies when the worktree has a package.json.
const DefaultAfterCreateHook = "[ -f package.json ] && pnpm install || true"

// NewDefaultConfig returns the built-in configuration.
func NewDefaultConfig() *Config {
	return &Config{
		WorktreesDir:        "./worktrees",
		DefaultBranchType:   BranchFeat,
		MaxBranchSlugLength: DefaultSlugLength,
		Terminal:            TerminalWezterm,
		AutoOpenTerminal:    true,
		AutoRunHooks:        true,
		DefaultBaseBranch:   "main",
		UseAIBranchNaming:   true,
		SessionStore:        StoreJSON,
		LogLevel:            "info",
		EnvFile:             ".opencode/.env",
		Hooks: HooksConfig{
			AfterCreate:   []string{DefaultAfterCreateHook},
			BeforeDestroy: []string{},
		},
	}
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.WorktreesDir) == "" {
		problems = append(problems, "worktreesDir must not be empty")
	}
	if !c.DefaultBranchType.IsValid() {
		problems = append(problems, fmt.Sprintf("defaultBranchType %q is not one of feat, fix, refactor, docs, chore, test", c.DefaultBranchType))
	}
	if c.MaxBranchSlugLength <= 0 {
		problems = append(problems, "maxBranchSlugLength must be a positive integer")
	}
	if !c.Terminal.IsValid() {
		problems = append(problems, fmt.Sprintf("terminal %q is not one of wezterm, tmux, kitty, none", c.Terminal))
	}
	if strings.TrimSpace(c.DefaultBaseBranch) == "" {
		problems = append(problems, "defaultBaseBranch must not be empty")
	}
	if c.SessionStore != StoreJSON && c.SessionStore != StoreSQLite {
		problems = append(problems, fmt.Sprintf("sessionStore %q is not one of json, sqlite", c.SessionStore))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logLevel %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// AIEnabled reports whether AI branch naming should be attempted.
func (c *Config) AIEnabled() bool {
	return c.UseAIBranchNaming && c.OpencodeServerURL != ""
}
