package usecase

import (
	"context"
	"fmt"

	"github.com/taskforge/transmute/internal/domain"
)

// StatusAll selects every status in ListSessionsInput.
const StatusAll = "all"

// ListSessionsInput contains the parameters for listing sessions.
type ListSessionsInput struct {
	Status string // active, missing, orphaned or all (default)
}

// SessionInfo is one row of the listing. Orphaned worktrees have no task.
type SessionInfo struct {
	TaskID            string               `json:"taskId,omitempty"`
	TaskName          string               `json:"taskName,omitempty"`
	Branch            string               `json:"branch"`
	WorktreePath      string               `json:"worktreePath"`
	Status            domain.SessionStatus `json:"status"`
	OpencodeSessionID string               `json:"opencodeSessionId,omitempty"`
	CreatedAt         string               `json:"createdAt,omitempty"`
	Tip               string               `json:"tip,omitempty"` // Commit the branch points to
}

// ListSessionsOutput contains the listing.
type ListSessionsOutput struct {
	Sessions []SessionInfo `json:"sessions"`
}

// ListSessions reconciles persisted sessions with live worktrees.
type ListSessions struct {
	sessions  domain.SessionRepository
	worktrees domain.WorktreeManager
	inspector domain.RepoInspector // optional
	repoRoot  string
}

// NewListSessions creates a new ListSessions use case.
func NewListSessions(sessions domain.SessionRepository, worktrees domain.WorktreeManager, inspector domain.RepoInspector, repoRoot string) *ListSessions {
	return &ListSessions{sessions: sessions, worktrees: worktrees, inspector: inspector, repoRoot: repoRoot}
}

// Execute lists sessions as active or missing, followed by orphaned worktrees.
func (uc *ListSessions) Execute(ctx context.Context, in ListSessionsInput) (*ListSessionsOutput, error) {
	status := in.Status
	if status == "" {
		status = StatusAll
	}
	switch domain.SessionStatus(status) {
	case domain.SessionActive, domain.SessionMissing, domain.SessionOrphaned, StatusAll:
	default:
		return nil, &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("%q is not one of active, missing, orphaned, all", in.Status)}
	}

	state, err := uc.sessions.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	worktrees, err := uc.worktrees.List(ctx, uc.repoRoot)
	if err != nil {
		return nil, fmt.Errorf("list worktrees: %w", err)
	}

	live := make(map[string]bool, len(worktrees))
	for _, wt := range worktrees {
		live[domain.CanonicalPath(wt.Path)] = true
	}
	recorded := make(map[string]bool, len(state.Sessions))

	infos := make([]SessionInfo, 0, len(state.Sessions)+len(worktrees))
	for _, s := range state.Sessions {
		p := domain.CanonicalPath(s.WorktreePath)
		recorded[p] = true
		st := domain.SessionMissing
		if live[p] {
			st = domain.SessionActive
		}
		infos = append(infos, SessionInfo{
			TaskID:            s.TaskID,
			TaskName:          s.TaskName,
			Branch:            s.Branch,
			WorktreePath:      s.WorktreePath,
			Status:            st,
			OpencodeSessionID: s.OpencodeSessionID,
			CreatedAt:         s.CreatedAt,
		})
	}
	for _, wt := range worktrees {
		if wt.IsMain || recorded[domain.CanonicalPath(wt.Path)] {
			continue
		}
		infos = append(infos, SessionInfo{
			Branch:       wt.Branch,
			WorktreePath: wt.Path,
			Status:       domain.SessionOrphaned,
		})
	}

	out := &ListSessionsOutput{Sessions: make([]SessionInfo, 0, len(infos))}
	for _, info := range infos {
		if status != StatusAll && string(info.Status) != status {
			continue
		}
		info.Tip = uc.tip(info.Branch)
		out.Sessions = append(out.Sessions, info)
	}
	return out, nil
}

func (uc *ListSessions) tip(branch string) string {
	if uc.inspector == nil || branch == "" || branch == domain.DetachedBranch {
		return ""
	}
	hash, ok, err := uc.inspector.BranchTip(branch)
	if err != nil || !ok {
		return ""
	}
	return hash
}
