package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linkedDir returns a real directory and a symlink pointing at it.
func linkedDir(t *testing.T) (real, link string) {
	t.Helper()
	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	real = filepath.Join(base, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(real, "worktrees", "feat-1"), 0o755))
	link = filepath.Join(base, "link")
	require.NoError(t, os.Symlink(real, link))
	return real, link
}

func TestCanonicalPath(t *testing.T) {
	real, link := linkedDir(t)

	assert.Equal(t, real, CanonicalPath(link))
	assert.Equal(t, filepath.Join(real, "worktrees", "feat-1"), CanonicalPath(filepath.Join(link, "worktrees", "feat-1")))
	// Missing leaves resolve through their existing ancestors
	assert.Equal(t, filepath.Join(real, "worktrees", "gone", "deeper"), CanonicalPath(filepath.Join(link, "worktrees", "gone", "deeper")))
	assert.Equal(t, real, CanonicalPath(link+"/worktrees/.."))
}

func TestCanonicalPath_NothingExists(t *testing.T) {
	assert.Equal(t, "/repo/worktrees/feat-1", CanonicalPath("/repo/worktrees/feat-1/"))
}

func TestSamePath(t *testing.T) {
	real, link := linkedDir(t)

	assert.True(t, SamePath(filepath.Join(real, "worktrees", "feat-1"), filepath.Join(link, "worktrees", "feat-1")))
	assert.True(t, SamePath("/repo/a/", "/repo/a"))
	assert.False(t, SamePath(filepath.Join(real, "worktrees"), filepath.Join(link, "worktrees", "feat-1")))
}
