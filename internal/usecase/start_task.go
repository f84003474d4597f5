// Package usecase contains application use cases.
package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/taskforge/transmute/internal/domain"
	"github.com/taskforge/transmute/internal/usecase/shared"
)

// StartTaskInput contains the parameters for starting a task.
// Fields are ordered to minimize memory padding.
type StartTaskInput struct {
	Env               map[string]string // Extra environment for the terminal
	TaskID            string            // Unique task identifier (required)
	Title             string            // Task title (required)
	Description       string            // Task description (optional)
	Priority          string            // Task priority (optional)
	Type              string            // Branch type hint (optional)
	Slug              string            // Pre-generated branch slug (optional)
	BaseBranch        string            // Base branch (default from config)
	OpencodeSessionID string            // Conversation to link; required to create
	TerminalCommands  []string          // Commands run after opencode in the terminal
	NoTerminal        bool              // Skip opening a terminal
	NoHooks           bool              // Skip afterCreate hooks
}

// Validate checks required fields and names the first offending one.
func (in StartTaskInput) Validate() error {
	if strings.TrimSpace(in.TaskID) == "" {
		return &domain.ValidationError{Field: "taskId", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.Title) == "" {
		return &domain.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if in.Type != "" && !domain.BranchType(in.Type).IsValid() {
		return &domain.ValidationError{Field: "type", Reason: fmt.Sprintf("%q is not one of feat, fix, refactor, docs, chore, test", in.Type)}
	}
	for name := range in.Env {
		if !shared.IsValidEnvVarName(name) {
			return &domain.ValidationError{Field: "env", Reason: fmt.Sprintf("%q is not a valid variable name", name)}
		}
	}
	return nil
}

// StartTaskOutput is the result of starting a task. Status is always set;
// failures are reported through Status and Message rather than an error.
type StartTaskOutput struct {
	Status            domain.WorkspaceStatus `json:"status"`
	Branch            string                 `json:"branch,omitempty"`
	WorktreePath      string                 `json:"worktreePath,omitempty"`
	TaskID            string                 `json:"taskId"`
	TaskName          string                 `json:"taskName,omitempty"`
	OpencodeSessionID string                 `json:"opencodeSessionId,omitempty"`
	Message           string                 `json:"message,omitempty"`
}

// StartTask creates a workspace for a task, or returns the existing one.
type StartTask struct {
	sessions  domain.SessionRepository
	worktrees domain.WorktreeManager
	hooks     domain.HookRunner
	terminal  domain.TerminalAdapter // nil disables terminal integration
	notifier  domain.Notifier        // nil disables notifications
	namer     *shared.BranchNamer
	config    *domain.Config
	clock     domain.Clock
	logger    domain.Logger
	repoRoot  string
}

// NewStartTask creates a new StartTask use case.
func NewStartTask(
	sessions domain.SessionRepository,
	worktrees domain.WorktreeManager,
	hooks domain.HookRunner,
	terminal domain.TerminalAdapter,
	notifier domain.Notifier,
	namer *shared.BranchNamer,
	config *domain.Config,
	clock domain.Clock,
	logger domain.Logger,
	repoRoot string,
) *StartTask {
	return &StartTask{
		sessions:  sessions,
		worktrees: worktrees,
		hooks:     hooks,
		terminal:  terminal,
		notifier:  notifier,
		namer:     namer,
		config:    config,
		clock:     clock,
		logger:    logger,
		repoRoot:  repoRoot,
	}
}

// Execute runs the workspace state machine. It never returns an error or
// panics: every failure becomes a StartTaskOutput with status failed.
func (uc *StartTask) Execute(ctx context.Context, in StartTaskInput) (out *StartTaskOutput) {
	run := &workspaceRun{uc: uc, taskID: in.TaskID, id: uuid.NewString()[:8]}

	// Set once the worktree exists so a panic after that point still rolls back.
	var created *domain.Worktree
	persisting := false

	defer func() {
		if r := recover(); r != nil {
			run.logf(uc.logger.Error, "panic: %v", r)
			run.phase(domain.PhaseFailed)
			if created != nil {
				uc.undo(ctx, run, in.TaskID, created.Path, persisting)
			}
			out = run.failed(in, fmt.Errorf("internal error: %v", r))
			if created != nil {
				out.Branch = created.Branch
			}
		}
	}()

	run.phase(domain.PhaseNew)
	if err := in.Validate(); err != nil {
		run.phase(domain.PhaseFailed)
		return run.failed(in, fmt.Errorf("invalid input: %w", err))
	}

	run.phase(domain.PhaseResolvingSession)
	existing, err := uc.sessions.FindByTask(ctx, in.TaskID)
	if err != nil {
		run.phase(domain.PhaseFailed)
		return run.failed(in, fmt.Errorf("look up session: %w", err))
	}
	if existing != nil {
		return uc.resumeExisting(ctx, run, in, existing)
	}

	run.phase(domain.PhaseNaming)
	name := uc.namer.Name(ctx, in.taskContext(), in.hint())
	run.logf(uc.logger.Info, "branch %s", name.Branch)

	run.phase(domain.PhaseCreatingWorktree)
	baseBranch := in.BaseBranch
	if baseBranch == "" {
		baseBranch = uc.config.DefaultBaseBranch
	}
	worktreesDir := domain.ResolveWorktreesDir(uc.repoRoot, uc.config.WorktreesDir)
	wt, err := uc.worktrees.Create(ctx, domain.CreateWorktreeOptions{
		Branch:     name.Branch,
		BaseBranch: baseBranch,
		TargetDir:  filepath.Join(worktreesDir, domain.WorktreeDirName(name.Branch)),
		Cwd:        uc.repoRoot,
	})
	if err != nil {
		run.phase(domain.PhaseFailed)
		out := run.failed(in, fmt.Errorf("create worktree: %w", err))
		out.Branch = name.Branch
		return out
	}
	created = wt

	persisting = true
	session, err := uc.persist(ctx, run, in, name, wt)
	if err != nil {
		run.phase(domain.PhaseFailed)
		uc.rollback(ctx, run, wt.Path)
		out := run.failed(in, err)
		out.Branch = name.Branch
		return out
	}

	run.phase(domain.PhaseRunningHooks)
	uc.runHooks(ctx, run, in, wt.Path)

	run.phase(domain.PhaseOpeningTerminal)
	if !in.NoTerminal && uc.config.AutoOpenTerminal {
		shared.OpenSessionTerminal(ctx, uc.terminal, uc.logger, shared.TerminalRequest{
			Session:     *session,
			Description: in.Description,
			Extra:       in.TerminalCommands,
			Env:         in.Env,
			IsNew:       true,
		})
	}

	uc.notify(run, session)

	run.phase(domain.PhaseDone)
	return &StartTaskOutput{
		Status:            domain.WorkspaceCreated,
		Branch:            session.Branch,
		WorktreePath:      session.WorktreePath,
		TaskID:            session.TaskID,
		TaskName:          session.TaskName,
		OpencodeSessionID: session.OpencodeSessionID,
	}
}

// resumeExisting reports an existing session. The stored conversation id
// always wins over the one passed in.
func (uc *StartTask) resumeExisting(ctx context.Context, run *workspaceRun, in StartTaskInput, s *domain.Session) *StartTaskOutput {
	if in.OpencodeSessionID != "" && in.OpencodeSessionID != s.OpencodeSessionID {
		run.logf(uc.logger.Info, "keeping stored conversation %s, ignoring %s", s.OpencodeSessionID, in.OpencodeSessionID)
	}

	if !in.NoTerminal && uc.config.AutoOpenTerminal {
		run.phase(domain.PhaseOpeningTerminal)
		shared.OpenSessionTerminal(ctx, uc.terminal, uc.logger, shared.TerminalRequest{
			Session: *s,
			Extra:   in.TerminalCommands,
			Env:     in.Env,
		})
	}

	run.phase(domain.PhaseDone)
	return &StartTaskOutput{
		Status:            domain.WorkspaceExisting,
		Branch:            s.Branch,
		WorktreePath:      s.WorktreePath,
		TaskID:            s.TaskID,
		TaskName:          s.TaskName,
		OpencodeSessionID: s.OpencodeSessionID,
	}
}

func (uc *StartTask) persist(ctx context.Context, run *workspaceRun, in StartTaskInput, name domain.BranchNameResult, wt *domain.Worktree) (*domain.Session, error) {
	run.phase(domain.PhasePersisting)
	if in.OpencodeSessionID == "" {
		return nil, fmt.Errorf("persist session: %w; it links the workspace to its conversation when resuming", domain.ErrSessionIDRequired)
	}

	session := domain.Session{
		TaskID:            in.TaskID,
		TaskName:          in.Title,
		Branch:            name.Branch,
		WorktreePath:      wt.Path,
		CreatedAt:         domain.FormatTimestamp(uc.clock.Now()),
		OpencodeSessionID: in.OpencodeSessionID,
	}
	if err := uc.sessions.Add(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return &session, nil
}

// rollback force-removes a worktree created earlier in this run.
func (uc *StartTask) rollback(ctx context.Context, run *workspaceRun, path string) {
	run.logf(uc.logger.Warn, "rolling back worktree %s", path)
	if err := uc.worktrees.Remove(context.WithoutCancel(ctx), path, true, uc.repoRoot); err != nil {
		run.logf(uc.logger.Error, "rollback of %s failed: %v", path, err)
		return
	}
	run.phase(domain.PhaseRolledBack)
}

// undo reverts a run that panicked after its worktree was created. The
// session record is dropped too when persisting had started. It must not
// panic itself, since it runs inside the recover handler.
func (uc *StartTask) undo(ctx context.Context, run *workspaceRun, taskID, path string, dropSession bool) {
	defer func() {
		if r := recover(); r != nil {
			run.logf(uc.logger.Error, "rollback of %s panicked: %v", path, r)
		}
	}()

	if dropSession {
		if err := uc.sessions.Remove(context.WithoutCancel(ctx), taskID); err != nil {
			run.logf(uc.logger.Error, "could not forget session %s: %v", taskID, err)
		}
	}
	uc.rollback(ctx, run, path)
}

// runHooks runs afterCreate hooks leniently. Failures are logged only.
func (uc *StartTask) runHooks(ctx context.Context, run *workspaceRun, in StartTaskInput, dir string) {
	if in.NoHooks || !uc.config.AutoRunHooks || uc.hooks == nil {
		return
	}
	results, err := uc.hooks.AfterCreate(ctx, uc.config.Hooks, domain.HookOptions{Cwd: dir, ContinueOnError: true})
	if err != nil {
		run.logf(uc.logger.Warn, "afterCreate hooks could not run: %v", err)
		return
	}
	for _, r := range domain.FailedHooks(results) {
		run.logf(uc.logger.Warn, "hook %q exited %d: %s", r.Command, r.ExitCode, strings.TrimSpace(r.Stderr))
	}
}

func (uc *StartTask) notify(run *workspaceRun, s *domain.Session) {
	if uc.notifier == nil || !uc.config.Notify {
		return
	}
	if err := domain.NotifyWorkspaceCreated(uc.notifier, *s); err != nil {
		run.logf(uc.logger.Warn, "notification failed: %v", err)
	}
}

func (in StartTaskInput) taskContext() domain.TaskContext {
	return domain.TaskContext{
		ID:          in.TaskID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Type:        in.Type,
	}
}

// hint returns the caller's branch hint when a slug was supplied.
func (in StartTaskInput) hint() *domain.BranchHint {
	if in.Slug == "" {
		return nil
	}
	t := domain.BranchType(in.Type)
	if t == "" {
		t = domain.BranchFeat
	}
	return &domain.BranchHint{Type: t, Slug: in.Slug}
}

// workspaceRun carries per-invocation logging context.
type workspaceRun struct {
	uc     *StartTask
	taskID string
	id     string
}

func (r *workspaceRun) phase(p domain.Phase) {
	r.uc.logger.Debug(r.taskID, "workspace", fmt.Sprintf("run=%s phase=%s", r.id, p))
}

func (r *workspaceRun) logf(level func(taskID, category, msg string), format string, args ...any) {
	level(r.taskID, "workspace", fmt.Sprintf("run=%s ", r.id)+fmt.Sprintf(format, args...))
}

func (r *workspaceRun) failed(in StartTaskInput, err error) *StartTaskOutput {
	r.logf(r.uc.logger.Error, "%v", err)
	msg := err.Error()
	if code := domain.CodeOf(err); code != "" && !strings.Contains(msg, string(code)) {
		msg = fmt.Sprintf("[%s] %s", code, msg)
	}
	return &StartTaskOutput{
		Status:   domain.WorkspaceFailed,
		TaskID:   in.TaskID,
		TaskName: in.Title,
		Message:  msg,
	}
}
