// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/taskforge/transmute/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// ExecCall records one MockCommandExecutor invocation.
type ExecCall struct {
	Name string
	Args []string
	Opts domain.ExecOptions
}

// Line returns the call as a single command line.
func (c ExecCall) Line() string {
	return domain.CommandLine(c.Name, c.Args)
}

// ExecResponse is a scripted reply for MockCommandExecutor.
type ExecResponse struct {
	Result *domain.ExecResult
	Err    error
}

// MockCommandExecutor is a test double for domain.CommandExecutor.
// Responses are matched by command-line prefix; the longest matching prefix
// wins. Queued responses are consumed before prefix responses.
type MockCommandExecutor struct {
	Responses map[string]ExecResponse
	Queue     []ExecResponse
	Calls     []ExecCall
	mu        sync.Mutex
}

// NewMockCommandExecutor creates an executor that succeeds with empty output
// unless told otherwise.
func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{Responses: make(map[string]ExecResponse)}
}

// On scripts the response for command lines starting with prefix.
func (m *MockCommandExecutor) On(prefix string, result *domain.ExecResult, err error) *MockCommandExecutor {
	m.Responses[prefix] = ExecResponse{Result: result, Err: err}
	return m
}

// Enqueue appends a one-shot response.
func (m *MockCommandExecutor) Enqueue(result *domain.ExecResult, err error) *MockCommandExecutor {
	m.Queue = append(m.Queue, ExecResponse{Result: result, Err: err})
	return m
}

// Exec records the call and returns the scripted response.
func (m *MockCommandExecutor) Exec(_ context.Context, name string, args []string, opts domain.ExecOptions) (*domain.ExecResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := ExecCall{Name: name, Args: append([]string(nil), args...), Opts: opts}
	m.Calls = append(m.Calls, call)

	if len(m.Queue) > 0 {
		resp := m.Queue[0]
		m.Queue = m.Queue[1:]
		return resp.Result, resp.Err
	}

	line := call.Line()
	best, found := "", false
	for prefix := range m.Responses {
		if strings.HasPrefix(line, prefix) && (!found || len(prefix) > len(best)) {
			best, found = prefix, true
		}
	}
	if found {
		resp := m.Responses[best]
		if resp.Result != nil && resp.Result.ExitCode != 0 && opts.ThrowOnError && resp.Err == nil {
			return resp.Result, domain.NewExecError(line, resp.Result.Stderr, resp.Result.ExitCode)
		}
		return resp.Result, resp.Err
	}
	return &domain.ExecResult{}, nil
}

// LastCall returns the most recent call.
func (m *MockCommandExecutor) LastCall() ExecCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return ExecCall{}
	}
	return m.Calls[len(m.Calls)-1]
}

// CalledWith reports whether any call's command line starts with prefix.
func (m *MockCommandExecutor) CalledWith(prefix string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Calls {
		if strings.HasPrefix(c.Line(), prefix) {
			return true
		}
	}
	return false
}

// MockWorktreeManager is a test double for domain.WorktreeManager.
type MockWorktreeManager struct {
	CreateErr     error
	RemoveErr     error
	ListErr       error
	PruneErr      error
	Worktrees     []domain.Worktree
	CreateCalls   []domain.CreateWorktreeOptions
	RemovedPaths  []string
	RemoveForced  []bool
	PruneCalled   bool
	WorktreesRoot string // Directory used for created worktree paths
}

// NewMockWorktreeManager creates a manager with a main worktree at root.
func NewMockWorktreeManager(root string) *MockWorktreeManager {
	return &MockWorktreeManager{
		WorktreesRoot: root + "/worktrees",
		Worktrees:     []domain.Worktree{{Path: root, Branch: "main", IsMain: true, Head: "0000000"}},
	}
}

// List returns the configured worktrees.
func (m *MockWorktreeManager) List(_ context.Context, _ string) ([]domain.Worktree, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return append([]domain.Worktree(nil), m.Worktrees...), nil
}

// Create records the call and adds a worktree.
func (m *MockWorktreeManager) Create(_ context.Context, opts domain.CreateWorktreeOptions) (*domain.Worktree, error) {
	m.CreateCalls = append(m.CreateCalls, opts)
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	path := opts.TargetDir
	if path == "" {
		path = m.WorktreesRoot + "/" + domain.WorktreeDirName(opts.Branch)
	}
	wt := domain.Worktree{Path: path, Branch: opts.Branch, Head: "abc1234"}
	m.Worktrees = append(m.Worktrees, wt)
	return &wt, nil
}

// Remove records the call and drops the worktree.
func (m *MockWorktreeManager) Remove(_ context.Context, path string, force bool, _ string) error {
	m.RemovedPaths = append(m.RemovedPaths, path)
	m.RemoveForced = append(m.RemoveForced, force)
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	for i, wt := range m.Worktrees {
		if wt.Path == path {
			m.Worktrees = append(m.Worktrees[:i], m.Worktrees[i+1:]...)
			break
		}
	}
	return nil
}

// Prune records the call.
func (m *MockWorktreeManager) Prune(_ context.Context, _ string) error {
	m.PruneCalled = true
	return m.PruneErr
}

// FindByBranch looks up the configured worktrees.
func (m *MockWorktreeManager) FindByBranch(_ context.Context, branch, _ string) (*domain.Worktree, error) {
	for _, wt := range m.Worktrees {
		if wt.Branch == branch {
			found := wt
			return &found, nil
		}
	}
	return nil, domain.NewWorktreeNotFoundError(branch)
}

// MockSessionRepository is a test double for domain.SessionRepository.
type MockSessionRepository struct {
	AddErr    error
	RemoveErr error
	LoadErr   error
	SaveErr   error
	State     domain.State
	AddCalls  int
}

// NewMockSessionRepository creates an empty repository.
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{State: domain.State{Sessions: []domain.Session{}}}
}

// Load returns a copy of the state.
func (m *MockSessionRepository) Load(_ context.Context) (*domain.State, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return &domain.State{Sessions: append([]domain.Session{}, m.State.Sessions...)}, nil
}

// Save replaces the state.
func (m *MockSessionRepository) Save(_ context.Context, state *domain.State) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if err := state.Validate(); err != nil {
		return err
	}
	m.State = domain.State{Sessions: append([]domain.Session{}, state.Sessions...)}
	return nil
}

// Add upserts a session.
func (m *MockSessionRepository) Add(_ context.Context, session domain.Session) error {
	m.AddCalls++
	if m.AddErr != nil {
		return m.AddErr
	}
	if err := session.ValidateNew(); err != nil {
		return err
	}
	m.State.Upsert(session)
	return nil
}

// Remove deletes a session.
func (m *MockSessionRepository) Remove(_ context.Context, taskID string) error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.State.Delete(taskID)
	return nil
}

// FindByTask returns the session or nil.
func (m *MockSessionRepository) FindByTask(_ context.Context, taskID string) (*domain.Session, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.State.Find(taskID), nil
}

// MockHookRunner is a test double for domain.HookRunner.
type MockHookRunner struct {
	Err      error
	Results  []domain.HookResult // Returned for non-empty command lists
	Executed [][]string
	Opts     []domain.HookOptions
}

// Execute records the commands.
func (m *MockHookRunner) Execute(_ context.Context, commands []string, opts domain.HookOptions) ([]domain.HookResult, error) {
	if len(commands) == 0 {
		return []domain.HookResult{}, nil
	}
	m.Executed = append(m.Executed, commands)
	m.Opts = append(m.Opts, opts)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Results != nil {
		return m.Results, nil
	}
	results := make([]domain.HookResult, 0, len(commands))
	for _, c := range commands {
		results = append(results, domain.HookResult{Command: c, Success: true})
	}
	return results, nil
}

// AfterCreate runs hooks.AfterCreate.
func (m *MockHookRunner) AfterCreate(ctx context.Context, hooks domain.HooksConfig, opts domain.HookOptions) ([]domain.HookResult, error) {
	return m.Execute(ctx, hooks.AfterCreate, opts)
}

// BeforeDestroy runs hooks.BeforeDestroy.
func (m *MockHookRunner) BeforeDestroy(ctx context.Context, hooks domain.HooksConfig, opts domain.HookOptions) ([]domain.HookResult, error) {
	return m.Execute(ctx, hooks.BeforeDestroy, opts)
}

// MockTerminalAdapter is a test double for domain.TerminalAdapter.
type MockTerminalAdapter struct {
	OpenErr   error
	Opened    []domain.OpenSessionOptions
	NameValue string
	Available bool
}

// NewMockTerminalAdapter creates an available adapter.
func NewMockTerminalAdapter() *MockTerminalAdapter {
	return &MockTerminalAdapter{NameValue: "mock", Available: true}
}

// Name returns the configured name.
func (m *MockTerminalAdapter) Name() string { return m.NameValue }

// IsAvailable returns the configured availability.
func (m *MockTerminalAdapter) IsAvailable(_ context.Context) bool { return m.Available }

// OpenSession records the options.
func (m *MockTerminalAdapter) OpenSession(_ context.Context, opts domain.OpenSessionOptions) error {
	m.Opened = append(m.Opened, opts)
	return m.OpenErr
}

// MockTextGenerator is a test double for domain.TextGenerator.
type MockTextGenerator struct {
	CreateErr  error
	PromptErr  error
	DeleteErr  error
	Response   string
	Prompts    []string
	Deleted    []string
	SessionID  string
	CreateHits int
}

// CreateSession returns the configured id.
func (m *MockTextGenerator) CreateSession(_ context.Context, _ string) (string, error) {
	m.CreateHits++
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	if m.SessionID == "" {
		return fmt.Sprintf("ses_mock_%d", m.CreateHits), nil
	}
	return m.SessionID, nil
}

// Prompt records the prompt and returns the configured response.
func (m *MockTextGenerator) Prompt(_ context.Context, _ string, text string) (string, error) {
	m.Prompts = append(m.Prompts, text)
	if m.PromptErr != nil {
		return "", m.PromptErr
	}
	return m.Response, nil
}

// DeleteSession records the deletion.
func (m *MockTextGenerator) DeleteSession(_ context.Context, id string) error {
	m.Deleted = append(m.Deleted, id)
	return m.DeleteErr
}

// MockNotifier is a test double for domain.Notifier.
type MockNotifier struct {
	Err      error
	Messages []string
}

// Notify records the message.
func (m *MockNotifier) Notify(title, message string) error {
	m.Messages = append(m.Messages, title+": "+message)
	return m.Err
}

// LogEntry is one line captured by MockLogger.
type LogEntry struct {
	Level    string
	TaskID   string
	Category string
	Msg      string
}

// MockLogger captures log lines.
type MockLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

func (m *MockLogger) add(level, taskID, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, LogEntry{Level: level, TaskID: taskID, Category: category, Msg: msg})
}

// Debug records a debug line.
func (m *MockLogger) Debug(taskID, category, msg string) { m.add("DEBUG", taskID, category, msg) }

// Info records an info line.
func (m *MockLogger) Info(taskID, category, msg string) { m.add("INFO", taskID, category, msg) }

// Warn records a warn line.
func (m *MockLogger) Warn(taskID, category, msg string) { m.add("WARN", taskID, category, msg) }

// Error records an error line.
func (m *MockLogger) Error(taskID, category, msg string) { m.add("ERROR", taskID, category, msg) }

// Has reports whether a line at level contains substr.
func (m *MockLogger) Has(level, substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Entries {
		if e.Level == level && strings.Contains(e.Msg, substr) {
			return true
		}
	}
	return false
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config *domain.Config
	Err    error
}

// NewMockConfigLoader returns a loader serving the default config.
func NewMockConfigLoader() *MockConfigLoader {
	return &MockConfigLoader{Config: domain.NewDefaultConfig()}
}

// Load returns the configured config.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Config, nil
}

// MockRepoInspector is a test double for domain.RepoInspector.
type MockRepoInspector struct {
	Err  error
	Tips map[string]string
}

// BranchTip looks up Tips.
func (m *MockRepoInspector) BranchTip(branch string) (string, bool, error) {
	if m.Err != nil {
		return "", false, m.Err
	}
	hash, ok := m.Tips[branch]
	return hash, ok, nil
}

// Ensure mocks implement their interfaces.
var (
	_ domain.CommandExecutor   = (*MockCommandExecutor)(nil)
	_ domain.WorktreeManager   = (*MockWorktreeManager)(nil)
	_ domain.SessionRepository = (*MockSessionRepository)(nil)
	_ domain.HookRunner        = (*MockHookRunner)(nil)
	_ domain.TerminalAdapter   = (*MockTerminalAdapter)(nil)
	_ domain.TextGenerator     = (*MockTextGenerator)(nil)
	_ domain.Notifier          = (*MockNotifier)(nil)
	_ domain.Logger            = (*MockLogger)(nil)
	_ domain.Clock             = (*MockClock)(nil)
	_ domain.ConfigLoader      = (*MockConfigLoader)(nil)
	_ domain.RepoInspector     = (*MockRepoInspector)(nil)
)
