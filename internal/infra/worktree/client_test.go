package worktree

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/transmute/internal/domain"
	"github.com/taskforge/transmute/internal/infra/executor"
)

// recordingExecutor runs commands for real and remembers their command lines.
type recordingExecutor struct {
	inner domain.CommandExecutor
	calls []string
}

func (r *recordingExecutor) Exec(ctx context.Context, name string, args []string, opts domain.ExecOptions) (*domain.ExecResult, error) {
	r.calls = append(r.calls, domain.CommandLine(name, args))
	return r.inner.Exec(ctx, name, args, opts)
}

func (r *recordingExecutor) called(prefix string) bool {
	for _, c := range r.calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

// setupTestRepo creates a temporary git repository with one commit on main.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	repoRoot := filepath.Join(tmpDir, "repo")
	require.NoError(t, os.MkdirAll(repoRoot, 0o755))

	runGit(t, repoRoot, "init")
	runGit(t, repoRoot, "symbolic-ref", "HEAD", "refs/heads/main")
	runGit(t, repoRoot, "config", "user.email", "test@example.com")
	runGit(t, repoRoot, "config", "user.name", "Test User")
	require.NoError(t, os.WriteFile(filepath.Join(repoRoot, "README.md"), []byte("# Test"), 0o644))
	runGit(t, repoRoot, "add", ".")
	runGit(t, repoRoot, "commit", "-m", "Initial commit")

	return repoRoot
}

func newTestClient(repoRoot string) (*Client, *recordingExecutor) {
	rec := &recordingExecutor{inner: executor.NewClient()}
	return NewClient(rec, repoRoot), rec
}

func TestClient_Create_NewBranch(t *testing.T) {
	repoRoot := setupTestRepo(t)
	client, _ := newTestClient(repoRoot)
	ctx := context.Background()

	wt, err := client.Create(ctx, domain.CreateWorktreeOptions{Branch: "feat/task-1-login", BaseBranch: "main"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(repoRoot, "worktrees", "feat-task-1-login"), wt.Path)
	assert.Equal(t, "feat/task-1-login", wt.Branch)
	assert.Equal(t, runGit(t, repoRoot, "rev-parse", "main"), wt.Head)
	assert.DirExists(t, wt.Path)

	found, err := client.FindByBranch(ctx, "feat/task-1-login", "")
	require.NoError(t, err)
	assert.Equal(t, wt.Path, found.Path)
	assert.False(t, found.IsMain)
}

func TestClient_Create_CustomWorktreesDir(t *testing.T) {
	repoRoot := setupTestRepo(t)
	client, _ := newTestClient(repoRoot)

	wt, err := client.Create(context.Background(), domain.CreateWorktreeOptions{
		Branch:       "fix/a",
		WorktreesDir: "./.trees",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repoRoot, ".trees", "fix-a"), wt.Path)
}

func TestClient_Create_ExistingBranch(t *testing.T) {
	repoRoot := setupTestRepo(t)
	runGit(t, repoRoot, "branch", "feat/existing")
	client, rec := newTestClient(repoRoot)

	wt, err := client.Create(context.Background(), domain.CreateWorktreeOptions{Branch: "feat/existing"})
	require.NoError(t, err)
	assert.DirExists(t, wt.Path)
	assert.True(t, rec.called("git worktree add "+wt.Path+" feat/existing"))
}

func TestClient_Create_BranchCheckedOut(t *testing.T) {
	repoRoot := setupTestRepo(t)
	client, rec := newTestClient(repoRoot)
	ctx := context.Background()

	_, err := client.Create(ctx, domain.CreateWorktreeOptions{Branch: "feat/a"})
	require.NoError(t, err)

	rec.calls = nil
	_, err = client.Create(ctx, domain.CreateWorktreeOptions{Branch: "feat/a", TargetDir: "elsewhere"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBranchExists)
	assert.False(t, rec.called("git worktree add"))
}

func TestClient_Create_DirExistsBeforeAdd(t *testing.T) {
	repoRoot := setupTestRepo(t)
	client, rec := newTestClient(repoRoot)

	occupied := filepath.Join(repoRoot, "worktrees", "feat-new")
	require.NoError(t, os.MkdirAll(occupied, 0o755))

	_, err := client.Create(context.Background(), domain.CreateWorktreeOptions{Branch: "feat/new"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDirExists)
	assert.Contains(t, err.Error(), occupied)
	assert.False(t, rec.called("git worktree add"))

	out := runGit(t, repoRoot, "branch", "--list", "feat/new")
	assert.Empty(t, out, "no branch should have been created")
}

func TestClient_Create_BaseNotFound(t *testing.T) {
	repoRoot := setupTestRepo(t)
	client, rec := newTestClient(repoRoot)

	_, err := client.Create(context.Background(), domain.CreateWorktreeOptions{Branch: "feat/x", BaseBranch: "develop"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBaseNotFound)
	assert.Contains(t, err.Error(), "develop")
	assert.False(t, rec.called("git worktree add"))
}

func TestClient_Create_NotARepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))
	client, _ := newTestClient(dir)

	_, err := client.Create(context.Background(), domain.CreateWorktreeOptions{Branch: "feat/x"})
	assert.ErrorIs(t, err, domain.ErrNoGitRepo)
}

func TestClient_Create_OrphanedWorktree(t *testing.T) {
	repoRoot := setupTestRepo(t)
	client, _ := newTestClient(repoRoot)
	ctx := context.Background()

	wt, err := client.Create(ctx, domain.CreateWorktreeOptions{Branch: "feat/orphan"})
	require.NoError(t, err)

	// Directory removed out-of-band; git still has it registered.
	require.NoError(t, os.RemoveAll(wt.Path))

	wt2, err := client.Create(ctx, domain.CreateWorktreeOptions{Branch: "feat/orphan"})
	require.NoError(t, err, "Create should recover from an orphaned registration")
	assert.Equal(t, wt.Path, wt2.Path)
	assert.DirExists(t, wt2.Path)
}

func TestClient_Remove(t *testing.T) {
	repoRoot := setupTestRepo(t)
	client, _ := newTestClient(repoRoot)
	ctx := context.Background()

	wt, err := client.Create(ctx, domain.CreateWorktreeOptions{Branch: "feat/rm"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(wt.Path, "dirty.txt"), []byte("x"), 0o644))

	err = client.Remove(ctx, wt.Path, false, "")
	require.Error(t, err, "dirty worktree needs force")
	assert.ErrorIs(t, err, domain.ErrExecFailed)

	require.NoError(t, client.Remove(ctx, wt.Path, true, ""))
	assert.NoDirExists(t, wt.Path)

	_, err = client.FindByBranch(ctx, "feat/rm", "")
	assert.ErrorIs(t, err, domain.ErrWorktreeNotFound)
}

func TestClient_List(t *testing.T) {
	repoRoot := setupTestRepo(t)
	client, _ := newTestClient(repoRoot)
	ctx := context.Background()

	_, err := client.Create(ctx, domain.CreateWorktreeOptions{Branch: "feat/one"})
	require.NoError(t, err)
	_, err = client.Create(ctx, domain.CreateWorktreeOptions{Branch: "feat/two"})
	require.NoError(t, err)

	worktrees, err := client.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, worktrees, 3)

	mains := 0
	for _, wt := range worktrees {
		if wt.IsMain {
			mains++
			assert.Equal(t, repoRoot, wt.Path)
			assert.Equal(t, "main", wt.Branch)
		}
		assert.NotEmpty(t, wt.Head)
	}
	assert.Equal(t, 1, mains)
}

func TestClient_Prune(t *testing.T) {
	repoRoot := setupTestRepo(t)
	client, _ := newTestClient(repoRoot)
	ctx := context.Background()

	wt, err := client.Create(ctx, domain.CreateWorktreeOptions{Branch: "feat/gone"})
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(wt.Path))

	require.NoError(t, client.Prune(ctx, ""))

	worktrees, err := client.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, worktrees, 1)
}

func TestParseWorktreeList(t *testing.T) {
	output := `worktree /repo
HEAD 1111111111111111111111111111111111111111
branch refs/heads/main

worktree /repo/worktrees/feat-a
HEAD 2222222222222222222222222222222222222222
branch refs/heads/feat/a

worktree /repo/worktrees/detached
HEAD 3333333333333333333333333333333333333333
detached
`
	worktrees, err := ParseWorktreeList(output, "/repo/")
	require.NoError(t, err)
	require.Len(t, worktrees, 3)

	assert.Equal(t, domain.Worktree{Path: "/repo", Branch: "main", Head: "1111111111111111111111111111111111111111", IsMain: true}, worktrees[0])
	assert.Equal(t, "feat/a", worktrees[1].Branch)
	assert.False(t, worktrees[1].IsMain)
	assert.Equal(t, domain.DetachedBranch, worktrees[2].Branch)
	assert.True(t, worktrees[2].IsDetached())
}

func TestParseWorktreeList_MainMatching(t *testing.T) {
	blocks := []string{
		"worktree /a\nHEAD 1\nbranch refs/heads/main",
		"worktree /b/\nHEAD 2\nbranch refs/heads/x",
		"worktree /c\nHEAD 3\ndetached",
	}
	output := strings.Join(blocks, "\n\n")

	for _, tt := range []struct {
		root      string
		wantMains int
	}{
		{"/a", 1}, {"/b", 1}, {"/c/", 1}, {"/z", 0}, {"", 0},
	} {
		worktrees, err := ParseWorktreeList(output, tt.root)
		require.NoError(t, err)
		assert.Len(t, worktrees, len(blocks))

		mains := 0
		for _, wt := range worktrees {
			if wt.IsMain {
				mains++
			}
		}
		assert.Equal(t, tt.wantMains, mains, "root %q", tt.root)
	}
}

func TestParseWorktreeList_Empty(t *testing.T) {
	worktrees, err := ParseWorktreeList("", "/repo")
	require.NoError(t, err)
	assert.Empty(t, worktrees)
}
