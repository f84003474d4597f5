package usecase

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/taskforge/transmute/internal/domain"
	"github.com/taskforge/transmute/internal/usecase/shared"
)

// PreviewBranchNameInput describes the task to name.
type PreviewBranchNameInput struct {
	TaskID      string
	Title       string
	Description string
	Type        string
	Slug        string // Optional hint, as for StartTask
}

// PreviewBranchNameOutput is the name StartTask would use.
type PreviewBranchNameOutput struct {
	domain.BranchNameResult
	WorktreePath string `json:"worktreePath"`
}

// PreviewBranchName runs the naming engine without touching git.
type PreviewBranchName struct {
	namer    *shared.BranchNamer
	config   *domain.Config
	repoRoot string
}

// NewPreviewBranchName creates a new PreviewBranchName use case.
func NewPreviewBranchName(namer *shared.BranchNamer, config *domain.Config, repoRoot string) *PreviewBranchName {
	return &PreviewBranchName{namer: namer, config: config, repoRoot: repoRoot}
}

// Execute returns the branch and worktree path for the task.
func (uc *PreviewBranchName) Execute(ctx context.Context, in PreviewBranchNameInput) (*PreviewBranchNameOutput, error) {
	if strings.TrimSpace(in.Title) == "" && strings.TrimSpace(in.TaskID) == "" && in.Slug == "" {
		return nil, &domain.ValidationError{Field: "title", Reason: "title, id or slug is required"}
	}

	start := StartTaskInput{TaskID: in.TaskID, Title: in.Title, Description: in.Description, Type: in.Type, Slug: in.Slug}
	name := uc.namer.Name(ctx, start.taskContext(), start.hint())

	dir := domain.ResolveWorktreesDir(uc.repoRoot, uc.config.WorktreesDir)
	return &PreviewBranchNameOutput{
		BranchNameResult: name,
		WorktreePath:     filepath.Join(dir, domain.WorktreeDirName(name.Branch)),
	}, nil
}
