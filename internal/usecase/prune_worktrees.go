package usecase

import (
	"context"
	"fmt"

	"github.com/taskforge/transmute/internal/domain"
)

// PruneWorktrees clears git metadata for worktrees whose directories are gone.
type PruneWorktrees struct {
	worktrees domain.WorktreeManager
	repoRoot  string
}

// NewPruneWorktrees creates a new PruneWorktrees use case.
func NewPruneWorktrees(worktrees domain.WorktreeManager, repoRoot string) *PruneWorktrees {
	return &PruneWorktrees{worktrees: worktrees, repoRoot: repoRoot}
}

// Execute runs git worktree prune.
func (uc *PruneWorktrees) Execute(ctx context.Context) error {
	if err := uc.worktrees.Prune(ctx, uc.repoRoot); err != nil {
		return fmt.Errorf("prune worktrees: %w", err)
	}
	return nil
}
