// Package jsonstore provides a JSON file-based implementation of SessionRepository.
package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/taskforge/transmute/internal/domain"
)

// stateFile mirrors domain.State with a pointer so that a missing
// "sessions" key can be told apart from an empty list.
type stateFile struct {
	Sessions *[]domain.Session `json:"sessions"`
}

// Store implements domain.SessionRepository using a JSON file.
type Store struct {
	path     string
	lockPath string
}

// New creates a new Store for the given file path.
// The file does not need to exist; it will be created on first write.
func New(path string) *Store {
	return &Store{
		path:     path,
		lockPath: path + ".lock",
	}
}

// NewForRepo creates a Store at the standard location under repoRoot.
func NewForRepo(repoRoot string) *Store {
	return New(domain.StateFilePath(repoRoot))
}

// Ensure Store implements SessionRepository.
var _ domain.SessionRepository = (*Store)(nil)

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the state. A missing file is empty state.
func (s *Store) Load(_ context.Context) (*domain.State, error) {
	var state *domain.State
	err := s.withLock(unix.LOCK_SH, func() error {
		var err error
		state, err = s.read()
		return err
	})
	return state, err
}

// Save validates state and replaces the file. Nothing is written when
// validation fails.
func (s *Store) Save(_ context.Context, state *domain.State) error {
	if err := state.Validate(); err != nil {
		return err
	}
	return s.withLock(unix.LOCK_EX, func() error {
		return s.write(state)
	})
}

// Add inserts session, replacing any record with the same task id.
func (s *Store) Add(_ context.Context, session domain.Session) error {
	if err := session.ValidateNew(); err != nil {
		return err
	}
	return s.withLock(unix.LOCK_EX, func() error {
		state, err := s.read()
		if err != nil {
			return err
		}
		state.Upsert(session)
		return s.write(state)
	})
}

// Remove deletes the record for taskID. Absent ids leave the file untouched.
func (s *Store) Remove(_ context.Context, taskID string) error {
	return s.withLock(unix.LOCK_EX, func() error {
		state, err := s.read()
		if err != nil {
			return err
		}
		if !state.Delete(taskID) {
			return nil
		}
		return s.write(state)
	})
}

// FindByTask returns the session for taskID, or nil.
func (s *Store) FindByTask(ctx context.Context, taskID string) (*domain.Session, error) {
	state, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return state.Find(taskID), nil
}

func (s *Store) withLock(lockType int, fn func() error) error {
	lock, err := s.acquireLock(lockType)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)
	return fn()
}

func (s *Store) acquireLock(lockType int) (*os.File, error) {
	// Ensure lock file directory exists
	dir := filepath.Dir(s.lockPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := unix.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = unix.Flock(int(lock.Fd()), unix.LOCK_UN)
	_ = lock.Close()
}

func (s *Store) read() (*domain.State, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &domain.State{Sessions: []domain.Session{}}, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var raw stateFile
	if err := json.Unmarshal(content, &raw); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrStateParse, s.path, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStateInvalid, s.path, err)
	}
	if raw.Sessions == nil {
		return nil, fmt.Errorf("%w: %s: missing sessions array", domain.ErrStateInvalid, s.path)
	}

	state := &domain.State{Sessions: *raw.Sessions}
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return state, nil
}

func (s *Store) write(state *domain.State) error {
	if state.Sessions == nil {
		state = &domain.State{Sessions: []domain.Session{}}
	}
	content, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	content = append(content, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath) // Clean up
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
