package types

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationEntry is a single displayed turn fragment. Entries with a
// request id are merge targets keyed by (request_id, role); entries
// without one are only passively ordered. Entries are never mutated in
// place: corrections come from a fresh reconciliation pass.
type ConversationEntry struct {
	Role      Role      `json:"role"`
	RequestID string    `json:"request_id,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientIdentity is the locally persisted identity triple plus the reset
// boundary, used to detect backend restarts and client upgrades across
// console reloads.
type ClientIdentity struct {
	SessionID     string     `json:"session_id"`
	BackendBootID string     `json:"backend_boot_id"`
	ClientBuildID string     `json:"client_build_id"`
	ResetBoundary *time.Time `json:"reset_boundary,omitempty"`
}

// UIState is the persisted console surface state.
type UIState struct {
	FollowTranscript bool   `json:"follow_transcript"`
	SelectedTaskID   string `json:"selected_task_id,omitempty"`
	SidebarCollapsed bool   `json:"sidebar_collapsed,omitempty"`
}
