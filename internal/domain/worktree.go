package domain

// DetachedBranch is the branch value of a worktree with a detached HEAD.
const DetachedBranch = "(detached)"

// DefaultWorktreesDir is used when neither TargetDir nor WorktreesDir is set.
const DefaultWorktreesDir = "worktrees"

// Worktree is one git working-tree checkout, always derived from git's live state.
type Worktree struct {
	Path   string `json:"path"`
	Branch string `json:"branch"`
	Head   string `json:"head,omitempty"`
	IsMain bool   `json:"isMain"`
}

// IsDetached reports a detached HEAD.
func (w Worktree) IsDetached() bool {
	return w.Branch == DetachedBranch
}

// CreateWorktreeOptions configures worktree creation.
type CreateWorktreeOptions struct {
	Branch       string
	BaseBranch   string // Defaults to "main"
	TargetDir    string // Overrides WorktreesDir when set
	WorktreesDir string // Relative to the repository root unless absolute
	Cwd          string
}
