package domain

import (
	"fmt"
	"time"
)

// Session links a task to its workspace.
type Session struct {
	TaskID            string `json:"taskId"`
	TaskName          string `json:"taskName"`
	Branch            string `json:"branch"`
	WorktreePath      string `json:"worktreePath"`
	CreatedAt         string `json:"createdAt"`
	OpencodeSessionID string `json:"opencodeSessionId"`
}

// CreatedTime parses CreatedAt. The zero time is returned for unparsable values.
func (s Session) CreatedTime() time.Time {
	t, err := time.Parse(time.RFC3339Nano, s.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Validate checks a single record as read from disk. OpencodeSessionID is
// allowed to be empty here so that older records stay readable.
func (s Session) Validate() error {
	if s.TaskID == "" {
		return fmt.Errorf("%w: taskId is empty", ErrStateInvalid)
	}
	if _, err := time.Parse(time.RFC3339Nano, s.CreatedAt); err != nil {
		return fmt.Errorf("%w: session %q: createdAt is not an ISO-8601 timestamp", ErrStateInvalid, s.TaskID)
	}
	return nil
}

// ValidateNew checks a record about to be created.
func (s Session) ValidateNew() error {
	if s.OpencodeSessionID == "" {
		return ErrSessionIDRequired
	}
	if s.Branch == "" || s.WorktreePath == "" {
		return fmt.Errorf("%w: session %q needs a branch and a worktree path", ErrInvalidInput, s.TaskID)
	}
	return s.Validate()
}

// FormatTimestamp renders t the way CreatedAt is stored.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// State is the whole persisted session store.
type State struct {
	Sessions []Session `json:"sessions"`
}

// Validate checks every session and rejects duplicate task ids.
func (s *State) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: state is nil", ErrStateInvalid)
	}
	seen := make(map[string]struct{}, len(s.Sessions))
	for _, sess := range s.Sessions {
		if err := sess.Validate(); err != nil {
			return err
		}
		if _, dup := seen[sess.TaskID]; dup {
			return fmt.Errorf("%w: duplicate taskId %q", ErrStateInvalid, sess.TaskID)
		}
		seen[sess.TaskID] = struct{}{}
	}
	return nil
}

// Find returns the session for taskID, or nil.
func (s *State) Find(taskID string) *Session {
	for i := range s.Sessions {
		if s.Sessions[i].TaskID == taskID {
			found := s.Sessions[i]
			return &found
		}
	}
	return nil
}

// Upsert replaces the session with the same task id or appends it.
func (s *State) Upsert(session Session) {
	for i := range s.Sessions {
		if s.Sessions[i].TaskID == session.TaskID {
			s.Sessions[i] = session
			return
		}
	}
	s.Sessions = append(s.Sessions, session)
}

// Delete removes the session for taskID and reports whether one existed.
func (s *State) Delete(taskID string) bool {
	for i := range s.Sessions {
		if s.Sessions[i].TaskID == taskID {
			s.Sessions = append(s.Sessions[:i], s.Sessions[i+1:]...)
			return true
		}
	}
	return false
}
