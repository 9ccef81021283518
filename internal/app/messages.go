package app

import (
	"time"

	"overseer/internal/session"
	"overseer/internal/types"
)

type tickMsg time.Time

type pollMsg time.Time

type historyMsg struct {
	records []types.HistoryRecord
	err     error
}

type tasksMsg struct {
	records []types.TaskRecord
	err     error
}

type identityMsg struct {
	result session.Result
	err    error
}

type submitMsg struct {
	seq       int
	requestID string
	err       error
}

type streamOpenedMsg struct {
	taskID string
	events <-chan types.TaskEvent
	cancel func()
	err    error
}

type uiStateSavedMsg struct {
	err error
}
