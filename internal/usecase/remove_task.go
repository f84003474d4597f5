package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/taskforge/transmute/internal/domain"
)

// RemoveTaskInput contains the parameters for removing a task workspace.
type RemoveTaskInput struct {
	TaskID string
	Force  bool // Remove even with uncommitted changes
}

// RemoveTaskOutput contains the result of removing a task workspace.
type RemoveTaskOutput struct {
	TaskID          string
	WorktreePath    string
	WorktreeRemoved bool // False when the worktree was already gone
}

// RemoveTask deletes one task's worktree and session record.
type RemoveTask struct {
	sessions  domain.SessionRepository
	worktrees domain.WorktreeManager
	hooks     domain.HookRunner
	config    *domain.Config
	logger    domain.Logger
	repoRoot  string
}

// NewRemoveTask creates a new RemoveTask use case.
func NewRemoveTask(
	sessions domain.SessionRepository,
	worktrees domain.WorktreeManager,
	hooks domain.HookRunner,
	config *domain.Config,
	logger domain.Logger,
	repoRoot string,
) *RemoveTask {
	return &RemoveTask{
		sessions:  sessions,
		worktrees: worktrees,
		hooks:     hooks,
		config:    config,
		logger:    logger,
		repoRoot:  repoRoot,
	}
}

// Execute runs beforeDestroy hooks, removes the worktree, then forgets the
// session. A worktree that no longer exists still lets the session go.
func (uc *RemoveTask) Execute(ctx context.Context, in RemoveTaskInput) (*RemoveTaskOutput, error) {
	session, err := uc.sessions.FindByTask(ctx, in.TaskID)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("task %s: %w", in.TaskID, domain.ErrSessionNotFound)
	}

	path, registered, err := uc.locate(ctx, session)
	if err != nil {
		return nil, err
	}
	out := &RemoveTaskOutput{TaskID: session.TaskID, WorktreePath: path}

	_, statErr := os.Stat(path)
	onDisk := statErr == nil

	switch {
	case registered && onDisk:
		runBeforeDestroy(ctx, uc.hooks, uc.config, uc.logger, session.TaskID, path)
		if err := uc.worktrees.Remove(ctx, path, in.Force, uc.repoRoot); err != nil {
			return nil, fmt.Errorf("remove worktree: %w", err)
		}
		out.WorktreeRemoved = true
	case registered:
		// Directory deleted by hand; clear git's record of it.
		if err := uc.worktrees.Prune(ctx, uc.repoRoot); err != nil {
			return nil, fmt.Errorf("prune worktrees: %w", err)
		}
	case statErr != nil && !errors.Is(statErr, os.ErrNotExist):
		return nil, fmt.Errorf("stat worktree: %w", statErr)
	}

	if err := uc.sessions.Remove(ctx, session.TaskID); err != nil {
		return nil, fmt.Errorf("remove session: %w", err)
	}
	uc.logger.Info(session.TaskID, "remove", fmt.Sprintf("removed workspace %s", path))
	return out, nil
}

// locate returns where the session's worktree lives. When git has nothing at
// the stored path, the worktree checked out on the session's branch is used,
// so a moved worktree is still removed.
func (uc *RemoveTask) locate(ctx context.Context, s *domain.Session) (string, bool, error) {
	worktrees, err := uc.worktrees.List(ctx, uc.repoRoot)
	if err != nil {
		return "", false, fmt.Errorf("list worktrees: %w", err)
	}
	for _, wt := range worktrees {
		if !wt.IsMain && domain.SamePath(wt.Path, s.WorktreePath) {
			return s.WorktreePath, true, nil
		}
	}

	if s.Branch == "" {
		return s.WorktreePath, false, nil
	}
	wt, err := uc.worktrees.FindByBranch(ctx, s.Branch, uc.repoRoot)
	switch {
	case errors.Is(err, domain.ErrWorktreeNotFound):
		return s.WorktreePath, false, nil
	case err != nil:
		return "", false, fmt.Errorf("find worktree for %s: %w", s.Branch, err)
	case wt.IsMain:
		return s.WorktreePath, false, nil
	}
	uc.logger.Warn(s.TaskID, "remove", fmt.Sprintf("stored path %s is stale; worktree for %s is at %s", s.WorktreePath, s.Branch, wt.Path))
	return wt.Path, true, nil
}
