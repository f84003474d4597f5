package usecase

import (
	"context"
	"fmt"

	"github.com/taskforge/transmute/internal/domain"
	"github.com/taskforge/transmute/internal/usecase/shared"
)

// ResumeTaskInput contains the parameters for resuming a task.
type ResumeTaskInput struct {
	Env              map[string]string
	TaskID           string
	TerminalCommands []string
	NoTerminal       bool
}

// ResumeTaskOutput contains the resumed session.
type ResumeTaskOutput struct {
	Session        domain.Session
	TerminalOpened bool
}

// ResumeTask reopens the workspace of an existing session.
type ResumeTask struct {
	sessions domain.SessionRepository
	terminal domain.TerminalAdapter
	logger   domain.Logger
}

// NewResumeTask creates a new ResumeTask use case.
func NewResumeTask(sessions domain.SessionRepository, terminal domain.TerminalAdapter, logger domain.Logger) *ResumeTask {
	return &ResumeTask{sessions: sessions, terminal: terminal, logger: logger}
}

// Execute looks up the session and opens a terminal on its stored conversation.
func (uc *ResumeTask) Execute(ctx context.Context, in ResumeTaskInput) (*ResumeTaskOutput, error) {
	if in.TaskID == "" {
		return nil, &domain.ValidationError{Field: "taskId", Reason: "must not be empty"}
	}

	session, err := uc.sessions.FindByTask(ctx, in.TaskID)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("task %s: %w", in.TaskID, domain.ErrSessionNotFound)
	}

	out := &ResumeTaskOutput{Session: *session}
	if !in.NoTerminal {
		out.TerminalOpened = shared.OpenSessionTerminal(ctx, uc.terminal, uc.logger, shared.TerminalRequest{
			Session: *session,
			Extra:   in.TerminalCommands,
			Env:     in.Env,
		})
	}
	return out, nil
}
