package types

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusProcessing TaskStatus = "PROCESSING"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusFailed     TaskStatus = "FAILED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// Active reports whether the task may still produce stream events.
func (s TaskStatus) Active() bool {
	switch s {
	case TaskStatusPending, TaskStatusProcessing:
		return true
	default:
		return false
	}
}

// Terminal reports whether the task reached a final state.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// HistoryRecord is the backend's record of a submitted request.
type HistoryRecord struct {
	RequestID string     `json:"request_id"`
	Prompt    string     `json:"prompt"`
	CreatedAt time.Time  `json:"created_at"`
	SessionID string     `json:"session_id,omitempty"`
	Status    TaskStatus `json:"status"`
}

// TaskRecord is the backend's record of task execution. TaskID doubles as
// the request id of the submission that created it.
type TaskRecord struct {
	TaskID         string           `json:"task_id"`
	Status         TaskStatus       `json:"status"`
	Result         string           `json:"result,omitempty"`
	UpdatedAt      time.Time        `json:"updated_at"`
	SessionID      string           `json:"session_id,omitempty"`
	ContextHistory []ContextMessage `json:"context_history,omitempty"`
}

// ContextMessage is one message of the conversation context the backend
// embedded in a task. Only the session attribution matters client-side.
type ContextMessage struct {
	Role      string `json:"role,omitempty"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// OwningSession resolves which session the task belongs to: an explicit
// session id wins, otherwise the first attributed context message.
func (t TaskRecord) OwningSession() string {
	if t.SessionID != "" {
		return t.SessionID
	}
	for _, msg := range t.ContextHistory {
		if msg.SessionID != "" {
			return msg.SessionID
		}
	}
	return ""
}

type TaskEventKind string

const (
	TaskEventUpdate   TaskEventKind = "task_update"
	TaskEventFinished TaskEventKind = "task_finished"
)

// TaskEvent is one message from a per-task live event stream.
type TaskEvent struct {
	Kind        TaskEventKind    `json:"kind"`
	TaskID      string           `json:"task_id"`
	Status      TaskStatus       `json:"status,omitempty"`
	Result      string           `json:"result,omitempty"`
	Logs        []string         `json:"logs,omitempty"`
	ContextUsed []ContextMessage `json:"context_used,omitempty"`
	Timestamp   time.Time        `json:"timestamp,omitzero"`
}

// Terminal reports whether the event closes the task's stream.
func (e TaskEvent) Terminal() bool {
	return e.Kind == TaskEventFinished || e.Status.Terminal()
}

// StreamState is the transient per-task liveness snapshot. It is rebuilt
// from stream events and never persisted.
type StreamState struct {
	Status      TaskStatus `json:"status,omitempty"`
	LastEventAt time.Time  `json:"last_event_at,omitzero"`
	Connected   bool       `json:"connected"`
}

// SystemInfo identifies the backend process.
type SystemInfo struct {
	BootID  string `json:"boot_id"`
	Version string `json:"version,omitempty"`
	PID     int    `json:"pid,omitempty"`
}
