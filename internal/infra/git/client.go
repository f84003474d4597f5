// Package git provides read-only repository inspection.
package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/taskforge/transmute/internal/domain"
	"github.com/taskforge/transmute/internal/infra/executor"
)

// Ensure Client implements domain.RepoInspector interface.
var _ domain.RepoInspector = (*Client)(nil)

// Client reads refs through go-git so listing many sessions does not spawn
// one git process per branch.
type Client struct {
	repo       *git.Repository
	repoRoot   string // Main repository root (parent of the common .git)
	workingDir string // Toplevel of the current worktree or main repo
}

// Open detects the repository containing dir. It works both in the main
// repository and inside linked worktrees, where repoRoot still points at the
// main checkout.
func Open(ctx context.Context, exec domain.CommandExecutor, dir string) (*Client, error) {
	repoRoot, workingDir, err := findGitRoot(ctx, exec, dir)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpenWithOptions(workingDir, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", workingDir, err)
	}

	return &Client{
		repo:       repo,
		repoRoot:   repoRoot,
		workingDir: workingDir,
	}, nil
}

// RepoRoot returns the main repository root.
func (c *Client) RepoRoot() string {
	return c.repoRoot
}

// WorkingDir returns the toplevel of the worktree Open was called from.
func (c *Client) WorkingDir() string {
	return c.workingDir
}

// BranchTip returns the commit a local branch points to.
func (c *Client) BranchTip(branch string) (string, bool, error) {
	ref, err := c.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("resolve branch %s: %w", branch, err)
	}
	return ref.Hash().String(), true, nil
}

// findGitRoot resolves the main repository root and the toplevel of the
// current worktree. Both have symlinks resolved so they compare equal to the
// paths git prints in worktree listings.
func findGitRoot(ctx context.Context, exec domain.CommandExecutor, dir string) (repoRoot, workingDir string, err error) {
	res, err := executor.Git(ctx, exec, []string{"rev-parse", "--git-common-dir"}, domain.DefaultExecOptions(dir))
	if err != nil {
		return "", "", err
	}
	gitDir := strings.TrimSpace(res.Stdout)
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(dir, gitDir)
	}
	if gitDir, err = filepath.EvalSymlinks(gitDir); err != nil {
		return "", "", fmt.Errorf("resolve git dir: %w", err)
	}

	workingDir, err = executor.GitRoot(ctx, exec, dir)
	if err != nil {
		return "", "", err
	}
	if workingDir, err = filepath.EvalSymlinks(workingDir); err != nil {
		return "", "", fmt.Errorf("resolve working dir: %w", err)
	}

	return filepath.Dir(gitDir), workingDir, nil
}
