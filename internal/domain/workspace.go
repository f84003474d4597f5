package domain

// WorkspaceStatus is the outcome of a create-or-resume call.
type WorkspaceStatus string

// Workspace statuses.
const (
	WorkspaceCreated  WorkspaceStatus = "created"
	WorkspaceExisting WorkspaceStatus = "existing"
	WorkspaceFailed   WorkspaceStatus = "failed"
)

// Phase is a step of the workspace state machine. Phases are logged as the
// orchestrator moves through them.
type Phase string

// Workspace phases.
const (
	PhaseNew              Phase = "NEW"
	PhaseResolvingSession Phase = "RESOLVING_SESSION"
	PhaseNaming           Phase = "NAMING"
	PhaseCreatingWorktree Phase = "CREATING_WORKTREE"
	PhasePersisting       Phase = "PERSISTING"
	PhaseRunningHooks     Phase = "RUNNING_HOOKS"
	PhaseOpeningTerminal  Phase = "OPENING_TERMINAL"
	PhaseDone             Phase = "DONE"
	PhaseFailed           Phase = "FAILED"
	PhaseRolledBack       Phase = "ROLLED_BACK"
)

// SessionStatus classifies a session or worktree when listing.
type SessionStatus string

// Session statuses.
const (
	SessionActive   SessionStatus = "active"
	SessionMissing  SessionStatus = "missing"
	SessionOrphaned SessionStatus = "orphaned"
)

// OpencodeCommand builds the shell command that opens an opencode conversation
// in a terminal. prompt is only passed for newly created workspaces.
func OpencodeCommand(sessionID, prompt string) string {
	cmd := "opencode"
	if sessionID != "" {
		cmd += " --session " + ShellQuote(sessionID)
	}
	if prompt != "" {
		cmd += " --prompt " + ShellQuote(prompt)
	}
	return cmd
}

// ShellQuote wraps s in single quotes for sh.
func ShellQuote(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, `'\''`...)
			continue
		}
		out = append(out, s[i])
	}
	out = append(out, '\'')
	return string(out)
}

// NotifyWorkspaceCreated announces a new workspace through n.
func NotifyWorkspaceCreated(n Notifier, s Session) error {
	return n.Notify("Transmute", s.TaskName+" is ready on "+s.Branch)
}
