// Package worktree provides git worktree operations.
package worktree

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/taskforge/transmute/internal/domain"
	"github.com/taskforge/transmute/internal/infra/executor"
)

// Client manages git worktrees by shelling out to git.
type Client struct {
	exec domain.CommandExecutor
	cwd  string // Used when a call does not name its own cwd
}

// NewClient creates a new worktree client. cwd is any directory inside the repository.
func NewClient(exec domain.CommandExecutor, cwd string) *Client {
	return &Client{exec: exec, cwd: cwd}
}

// Ensure Client implements domain.WorktreeManager interface.
var _ domain.WorktreeManager = (*Client)(nil)

func (c *Client) dir(cwd string) string {
	if cwd != "" {
		return cwd
	}
	return c.cwd
}

func (c *Client) git(ctx context.Context, cwd string, args ...string) (*domain.ExecResult, error) {
	return executor.Git(ctx, c.exec, args, domain.DefaultExecOptions(cwd))
}

// List returns all worktrees of the repository containing cwd.
func (c *Client) List(ctx context.Context, cwd string) ([]domain.Worktree, error) {
	cwd = c.dir(cwd)
	root, err := executor.GitRoot(ctx, c.exec, cwd)
	if err != nil {
		return nil, err
	}
	res, err := c.git(ctx, cwd, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("list worktrees: %w", err)
	}
	return ParseWorktreeList(res.Stdout, root)
}

// Create creates a worktree for opts.Branch. Every precondition (branch
// collision, directory collision, base branch) is checked before git is asked
// to change anything.
func (c *Client) Create(ctx context.Context, opts domain.CreateWorktreeOptions) (*domain.Worktree, error) {
	cwd := c.dir(opts.Cwd)
	baseBranch := opts.BaseBranch
	if baseBranch == "" {
		baseBranch = "main"
	}

	root, err := executor.GitRoot(ctx, c.exec, cwd)
	if err != nil {
		return nil, err
	}

	targetDir := opts.TargetDir
	if targetDir == "" {
		targetDir = filepath.Join(domain.ResolveWorktreesDir(root, opts.WorktreesDir), domain.WorktreeDirName(opts.Branch))
	} else if !filepath.IsAbs(targetDir) {
		targetDir = filepath.Join(root, targetDir)
	}

	branchExists, err := c.branchExists(ctx, cwd, opts.Branch)
	if err != nil {
		return nil, err
	}

	// A registration whose directory is gone does not count as checked out;
	// it is pruned below once every precondition has passed.
	stale := false
	if branchExists {
		worktrees, err := c.List(ctx, cwd)
		if err != nil {
			return nil, err
		}
		for _, wt := range worktrees {
			if wt.Branch != opts.Branch {
				continue
			}
			if _, statErr := os.Stat(wt.Path); statErr == nil {
				return nil, domain.NewBranchExistsError(opts.Branch)
			}
			stale = true
		}
	}

	if _, err := os.Stat(targetDir); err == nil {
		return nil, domain.NewDirExistsError(targetDir)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("check target directory: %w", err)
	}

	baseExists, err := c.branchExists(ctx, cwd, baseBranch)
	if err != nil {
		return nil, err
	}
	if !baseExists {
		return nil, domain.NewBaseNotFoundError(baseBranch)
	}

	if err := os.MkdirAll(filepath.Dir(targetDir), 0o750); err != nil {
		return nil, fmt.Errorf("create worktrees directory: %w", err)
	}

	if stale {
		if err := c.Prune(ctx, cwd); err != nil {
			return nil, err
		}
	}

	var args []string
	if branchExists {
		args = []string{"worktree", "add", targetDir, opts.Branch}
	} else {
		args = []string{"worktree", "add", "-b", opts.Branch, targetDir, baseBranch}
	}

	if _, err := c.git(ctx, cwd, args...); err != nil {
		var we *domain.WorktreeError
		if !errors.As(err, &we) || !strings.Contains(we.Stderr, "already registered") {
			return nil, fmt.Errorf("create worktree: %w", err)
		}
		if pruneErr := c.Prune(ctx, cwd); pruneErr != nil {
			return nil, fmt.Errorf("prune stale worktrees: %w", pruneErr)
		}
		if _, err := c.git(ctx, cwd, args...); err != nil {
			return nil, fmt.Errorf("create worktree after prune: %w", err)
		}
	}

	head, err := c.git(ctx, targetDir, "rev-parse", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("resolve worktree HEAD: %w", err)
	}

	return &domain.Worktree{
		Path:   targetDir,
		Branch: opts.Branch,
		Head:   strings.TrimSpace(head.Stdout),
	}, nil
}

// Remove deletes the worktree at path. force discards local modifications.
func (c *Client) Remove(ctx context.Context, path string, force bool, cwd string) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)
	if _, err := c.git(ctx, c.dir(cwd), args...); err != nil {
		return fmt.Errorf("remove worktree: %w", err)
	}
	return nil
}

// Prune removes registrations whose directories no longer exist.
func (c *Client) Prune(ctx context.Context, cwd string) error {
	if _, err := c.git(ctx, c.dir(cwd), "worktree", "prune"); err != nil {
		return fmt.Errorf("prune worktrees: %w", err)
	}
	return nil
}

// FindByBranch returns the worktree checked out on branch.
// It fails with WORKTREE_NOT_FOUND when there is none.
func (c *Client) FindByBranch(ctx context.Context, branch, cwd string) (*domain.Worktree, error) {
	worktrees, err := c.List(ctx, cwd)
	if err != nil {
		return nil, err
	}
	for _, wt := range worktrees {
		if wt.Branch == branch {
			found := wt
			return &found, nil
		}
	}
	return nil, domain.NewWorktreeNotFoundError(branch)
}

// branchExists reports whether a local branch exists.
func (c *Client) branchExists(ctx context.Context, cwd, branch string) (bool, error) {
	res, err := c.git(ctx, cwd, "branch", "--list", branch)
	if err != nil {
		return false, fmt.Errorf("check branch exists: %w", err)
	}
	return strings.TrimSpace(res.Stdout) != "", nil
}

// ParseWorktreeList parses the porcelain output of git worktree list.
// Format:
//
//	worktree /path/to/worktree
//	HEAD abc123
//	branch refs/heads/branch-name
//	<blank line>
//
// A "detached" line replaces the branch line for a detached HEAD. IsMain is
// set on the block whose path matches repoRoot.
func ParseWorktreeList(output, repoRoot string) ([]domain.Worktree, error) {
	mainPath := trimTrailingSlash(repoRoot)
	var worktrees []domain.Worktree
	var current domain.Worktree
	inBlock := false

	flush := func() {
		if inBlock && current.Path != "" {
			current.IsMain = mainPath != "" && trimTrailingSlash(current.Path) == mainPath
			worktrees = append(worktrees, current)
		}
		current = domain.Worktree{}
		inBlock = false
	}

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		switch {
		case strings.HasPrefix(line, "worktree "):
			if inBlock {
				flush()
			}
			current.Path = strings.TrimPrefix(line, "worktree ")
			inBlock = true
		case strings.HasPrefix(line, "HEAD "):
			current.Head = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			ref := strings.TrimPrefix(line, "branch ")
			current.Branch = strings.TrimPrefix(ref, "refs/heads/")
		case line == "detached":
			current.Branch = domain.DetachedBranch
		case line == "":
			flush()
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse worktree list: %w", err)
	}
	return worktrees, nil
}

func trimTrailingSlash(p string) string {
	for len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}
