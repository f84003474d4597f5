package shared

import (
	"context"
	"fmt"

	"github.com/taskforge/transmute/internal/domain"
)

// TerminalRequest describes the terminal to open for a session.
type TerminalRequest struct {
	Env         map[string]string
	Session     domain.Session
	Description string   // Included in the initial prompt of new sessions
	Extra       []string // Commands run after opencode
	IsNew       bool
}

// OpenSessionTerminal opens a terminal in the session's worktree running
// opencode on the stored conversation. Terminal problems are logged and
// reported as false; they never fail the caller.
func OpenSessionTerminal(ctx context.Context, term domain.TerminalAdapter, log domain.Logger, req TerminalRequest) bool {
	if term == nil {
		return false
	}
	s := req.Session
	if !term.IsAvailable(ctx) {
		log.Warn(s.TaskID, "terminal", fmt.Sprintf("terminal %s is not available, skipping", term.Name()))
		return false
	}

	commands := make([]string, 0, 1+len(req.Extra))
	if s.OpencodeSessionID != "" {
		prompt := ""
		if req.IsNew {
			prompt = fmt.Sprintf("Task %s: %s\n%s", s.TaskID, s.TaskName, req.Description)
		}
		commands = append(commands, domain.OpencodeCommand(s.OpencodeSessionID, prompt))
	}
	commands = append(commands, req.Extra...)

	err := term.OpenSession(ctx, domain.OpenSessionOptions{
		Cwd:      s.WorktreePath,
		Title:    fmt.Sprintf("%s (%s)", s.TaskName, s.Branch),
		Commands: commands,
		Env:      req.Env,
	})
	if err != nil {
		log.Warn(s.TaskID, "terminal", fmt.Sprintf("failed to open terminal: %v", err))
		return false
	}
	log.Info(s.TaskID, "terminal", fmt.Sprintf("opened %s in %s", term.Name(), s.WorktreePath))
	return true
}
