package tui

import "github.com/taskforge/transmute/internal/usecase"

// Msg is the sealed interface for all TUI messages.
//
// go-sumtype:decl Msg
type Msg interface {
	sealed()
}

// MsgSessionsLoaded is sent when the workspace list has been read.
type MsgSessionsLoaded struct {
	Sessions []usecase.SessionInfo
}

func (MsgSessionsLoaded) sealed() {}

// MsgTaskResumed is sent after a resume attempt succeeded.
type MsgTaskResumed struct {
	TaskID            string
	WorktreePath      string
	OpencodeSessionID string
	TerminalOpened    bool
}

func (MsgTaskResumed) sealed() {}

// MsgError is sent when a background command fails.
type MsgError struct {
	Err error
}

func (MsgError) sealed() {}
