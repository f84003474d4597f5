// Package app provides the dependency injection container for the application.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/taskforge/transmute/internal/domain"
	"github.com/taskforge/transmute/internal/infra/config"
	"github.com/taskforge/transmute/internal/infra/executor"
	"github.com/taskforge/transmute/internal/infra/git"
	"github.com/taskforge/transmute/internal/infra/hooks"
	"github.com/taskforge/transmute/internal/infra/jsonstore"
	"github.com/taskforge/transmute/internal/infra/logging"
	"github.com/taskforge/transmute/internal/infra/notify"
	"github.com/taskforge/transmute/internal/infra/opencode"
	"github.com/taskforge/transmute/internal/infra/sqlitestore"
	"github.com/taskforge/transmute/internal/infra/terminal"
	"github.com/taskforge/transmute/internal/infra/worktree"
	"github.com/taskforge/transmute/internal/usecase"
	"github.com/taskforge/transmute/internal/usecase/shared"
)

// Config holds the application paths.
type Config struct {
	RepoRoot    string // Main repository root
	WorkingDir  string // Toplevel of the worktree the command ran in
	OpencodeDir string // <RepoRoot>/.opencode
	StorePath   string // Session store file
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Executor     domain.CommandExecutor
	Worktrees    domain.WorktreeManager
	Sessions     domain.SessionRepository
	Hooks        domain.HookRunner
	Terminal     domain.TerminalAdapter // nil when terminal is "none"
	TextGen      domain.TextGenerator   // nil when no opencode server is configured
	Notifier     domain.Notifier
	Inspector    domain.RepoInspector
	ConfigLoader domain.ConfigLoader
	Clock        domain.Clock
	Logger       domain.Logger

	// Pointer fields
	AppConfig *domain.Config

	// Configuration
	Config Config

	closers []io.Closer
}

// New creates a new Container by detecting the git repository from the given directory.
func New(ctx context.Context, dir string) (*Container, error) {
	exec := executor.NewClient()

	gitClient, err := git.Open(ctx, exec, dir)
	if err != nil {
		return nil, err
	}
	repoRoot := gitClient.RepoRoot()

	configLoader := config.NewLoader(repoRoot)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(repoRoot, logging.ParseLevel(appConfig.LogLevel))
	for _, w := range appConfig.Warnings {
		logger.Warn("", "config", w)
	}

	c := &Container{
		Executor:     exec,
		Worktrees:    worktree.NewClient(exec, repoRoot),
		Hooks:        hooks.NewRunner(resolvePath(repoRoot, appConfig.EnvFile), logger),
		Notifier:     notify.New(logger),
		Inspector:    gitClient,
		ConfigLoader: configLoader,
		Clock:        domain.RealClock{},
		Logger:       logger,
		AppConfig:    appConfig,
		Config: Config{
			RepoRoot:    repoRoot,
			WorkingDir:  gitClient.WorkingDir(),
			OpencodeDir: domain.OpencodeDir(repoRoot),
		},
		closers: []io.Closer{logger},
	}

	// Create session store based on config
	if appConfig.SessionStore == domain.StoreSQLite {
		store, err := sqlitestore.NewForRepo(repoRoot, logger)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("open session database: %w", err)
		}
		c.Sessions = store
		c.Config.StorePath = domain.SQLiteFilePath(repoRoot)
		c.closers = append(c.closers, store)
	} else {
		c.Sessions = jsonstore.NewForRepo(repoRoot)
		c.Config.StorePath = domain.StateFilePath(repoRoot)
	}

	term, err := terminal.New(appConfig.Terminal, exec)
	if err != nil {
		logger.Warn("", "terminal", err.Error())
	}
	c.Terminal = term

	if appConfig.AIEnabled() {
		c.TextGen = opencode.New(appConfig.OpencodeServerURL, logger)
	}

	return c, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, appConfig *domain.Config, sessions domain.SessionRepository, worktrees domain.WorktreeManager, clock domain.Clock, logger domain.Logger) *Container {
	return &Container{
		Sessions:     sessions,
		Worktrees:    worktrees,
		ConfigLoader: staticLoader{appConfig},
		Clock:        clock,
		Logger:       logger,
		AppConfig:    appConfig,
		Config:       cfg,
	}
}

// Close releases the session database and log files.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// UseCase factory methods

// BranchNamer returns the naming engine configured for this repository.
func (c *Container) BranchNamer() *shared.BranchNamer {
	return shared.NewBranchNamer(c.TextGen, c.AppConfig, c.Logger)
}

// StartTaskUseCase returns a new StartTask use case.
func (c *Container) StartTaskUseCase() *usecase.StartTask {
	return usecase.NewStartTask(
		c.Sessions, c.Worktrees, c.Hooks, c.Terminal, c.Notifier,
		c.BranchNamer(), c.AppConfig, c.Clock, c.Logger, c.Config.RepoRoot,
	)
}

// ResumeTaskUseCase returns a new ResumeTask use case.
func (c *Container) ResumeTaskUseCase() *usecase.ResumeTask {
	return usecase.NewResumeTask(c.Sessions, c.Terminal, c.Logger)
}

// ListSessionsUseCase returns a new ListSessions use case.
func (c *Container) ListSessionsUseCase() *usecase.ListSessions {
	return usecase.NewListSessions(c.Sessions, c.Worktrees, c.Inspector, c.Config.RepoRoot)
}

// CleanWorkspacesUseCase returns a new CleanWorkspaces use case.
func (c *Container) CleanWorkspacesUseCase() *usecase.CleanWorkspaces {
	return usecase.NewCleanWorkspaces(c.Sessions, c.Worktrees, c.Hooks, c.AppConfig, c.Clock, c.Logger, c.Config.RepoRoot)
}

// RemoveTaskUseCase returns a new RemoveTask use case.
func (c *Container) RemoveTaskUseCase() *usecase.RemoveTask {
	return usecase.NewRemoveTask(c.Sessions, c.Worktrees, c.Hooks, c.AppConfig, c.Logger, c.Config.RepoRoot)
}

// PruneWorktreesUseCase returns a new PruneWorktrees use case.
func (c *Container) PruneWorktreesUseCase() *usecase.PruneWorktrees {
	return usecase.NewPruneWorktrees(c.Worktrees, c.Config.RepoRoot)
}

// PreviewBranchNameUseCase returns a new PreviewBranchName use case.
func (c *Container) PreviewBranchNameUseCase() *usecase.PreviewBranchName {
	return usecase.NewPreviewBranchName(c.BranchNamer(), c.AppConfig, c.Config.RepoRoot)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigLoader)
}

// TerminalAvailability reports which terminal adapters can be used here.
func (c *Container) TerminalAvailability(ctx context.Context) []terminal.Availability {
	return terminal.CheckAvailability(ctx, terminal.All(c.Executor))
}

// SuggestedTerminal returns the first terminal that can be used here, or ""
// when there is none.
func (c *Container) SuggestedTerminal(ctx context.Context) string {
	if a := terminal.FirstAvailable(ctx, terminal.All(c.Executor)); a != nil {
		return a.Name()
	}
	return ""
}

func resolvePath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// staticLoader serves an already loaded config.
type staticLoader struct {
	cfg *domain.Config
}

func (l staticLoader) Load() (*domain.Config, error) {
	return l.cfg, nil
}
