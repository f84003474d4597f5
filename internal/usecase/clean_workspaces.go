package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/taskforge/transmute/internal/domain"
)

// CleanWorkspacesInput contains the parameters for cleaning workspaces.
type CleanWorkspacesInput struct {
	MaxAgeDays int  // Remove sessions older than this; 0 disables age checks
	DryRun     bool // Report only
	Force      bool // Also remove orphans outside the worktrees dir, force-remove dirty trees
}

// CleanWorkspacesOutput reports what was (or would be) removed.
type CleanWorkspacesOutput struct {
	CleanedPaths []string `json:"cleanedPaths"`
	Errors       []string `json:"errors"`
	CleanedCount int      `json:"cleanedCount"`
}

// CleanWorkspaces removes orphaned and stale worktrees.
type CleanWorkspaces struct {
	sessions  domain.SessionRepository
	worktrees domain.WorktreeManager
	hooks     domain.HookRunner
	config    *domain.Config
	clock     domain.Clock
	logger    domain.Logger
	repoRoot  string
}

// NewCleanWorkspaces creates a new CleanWorkspaces use case.
func NewCleanWorkspaces(
	sessions domain.SessionRepository,
	worktrees domain.WorktreeManager,
	hooks domain.HookRunner,
	config *domain.Config,
	clock domain.Clock,
	logger domain.Logger,
	repoRoot string,
) *CleanWorkspaces {
	return &CleanWorkspaces{
		sessions:  sessions,
		worktrees: worktrees,
		hooks:     hooks,
		config:    config,
		clock:     clock,
		logger:    logger,
		repoRoot:  repoRoot,
	}
}

// Execute cleans workspaces. Individual removal failures are collected in
// the output; only invalid input or an unreadable repository is an error.
func (uc *CleanWorkspaces) Execute(ctx context.Context, in CleanWorkspacesInput) (*CleanWorkspacesOutput, error) {
	if in.MaxAgeDays < 0 {
		return nil, &domain.ValidationError{Field: "maxAgeDays", Reason: "must be a positive integer"}
	}

	out := &CleanWorkspacesOutput{CleanedPaths: []string{}, Errors: []string{}}

	worktrees, err := uc.worktrees.List(ctx, uc.repoRoot)
	if err != nil {
		return nil, fmt.Errorf("list worktrees: %w", err)
	}
	state, err := uc.sessions.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	worktreesDir := domain.ResolveWorktreesDir(uc.repoRoot, uc.config.WorktreesDir)
	now := uc.clock.Now()

	for _, wt := range worktrees {
		if wt.IsMain {
			continue
		}
		session := findSessionByPath(state, wt.Path)

		reason := ""
		switch {
		case session == nil:
			if in.Force || isWithin(worktreesDir, wt.Path) {
				reason = "Orphaned worktree"
			}
		case in.MaxAgeDays > 0:
			created := session.CreatedTime()
			if !created.IsZero() && now.Sub(created) > time.Duration(in.MaxAgeDays)*24*time.Hour {
				reason = fmt.Sprintf("Older than %d days", in.MaxAgeDays)
			}
		}
		if reason == "" {
			continue
		}

		if in.DryRun {
			out.CleanedPaths = append(out.CleanedPaths, fmt.Sprintf("%s (%s) [DRY RUN]", wt.Path, reason))
			out.CleanedCount++
			continue
		}

		taskID := ""
		if session != nil {
			taskID = session.TaskID
		}
		if err := uc.remove(ctx, wt.Path, taskID, in.Force); err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("Failed to remove %s: %v", wt.Path, err))
			continue
		}
		uc.logger.Info(taskID, "clean", fmt.Sprintf("removed %s (%s)", wt.Path, reason))
		out.CleanedPaths = append(out.CleanedPaths, wt.Path)
		out.CleanedCount++
	}
	return out, nil
}

func (uc *CleanWorkspaces) remove(ctx context.Context, path, taskID string, force bool) error {
	runBeforeDestroy(ctx, uc.hooks, uc.config, uc.logger, taskID, path)
	if err := uc.worktrees.Remove(ctx, path, force, uc.repoRoot); err != nil {
		return err
	}
	if taskID != "" {
		if err := uc.sessions.Remove(ctx, taskID); err != nil {
			return fmt.Errorf("remove session: %w", err)
		}
	}
	return nil
}

// runBeforeDestroy runs beforeDestroy hooks leniently in dir.
func runBeforeDestroy(ctx context.Context, hooks domain.HookRunner, cfg *domain.Config, log domain.Logger, taskID, dir string) {
	if hooks == nil || len(cfg.Hooks.BeforeDestroy) == 0 {
		return
	}
	results, err := hooks.BeforeDestroy(ctx, cfg.Hooks, domain.HookOptions{Cwd: dir, ContinueOnError: true})
	if err != nil {
		log.Warn(taskID, "hooks", fmt.Sprintf("beforeDestroy hooks could not run in %s: %v", dir, err))
		return
	}
	for _, r := range domain.FailedHooks(results) {
		log.Warn(taskID, "hooks", fmt.Sprintf("hook %q exited %d", r.Command, r.ExitCode))
	}
}

func findSessionByPath(state *domain.State, path string) *domain.Session {
	want := domain.CanonicalPath(path)
	for i := range state.Sessions {
		if domain.CanonicalPath(state.Sessions[i].WorktreePath) == want {
			return &state.Sessions[i]
		}
	}
	return nil
}

// isWithin reports whether path is inside dir, with symlinks resolved.
func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(domain.CanonicalPath(dir), domain.CanonicalPath(path))
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
