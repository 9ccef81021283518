// Package timeline reconciles a conversation transcript fed by several
// partially-overlapping sources: locally buffered optimistic entries, the
// backend history query, the task query, and live stream events. All
// functions are pure; each pass produces a new slice and leaves its
// inputs untouched.
package timeline

import (
	"time"

	"overseer/internal/types"
)

type entryKey struct {
	requestID string
	role      types.Role
}

// Merge fills gaps in entries from backend history and task records
// without ever overwriting content that is already present.
//
// A history record synthesizes a user entry, a task record an assistant
// entry, only when no non-empty entry for that (request_id, role) exists
// yet. Records attributed to a session other than activeSessionID are
// excluded; a history record with no session id at all is excluded too
// once a session is active, since ambiguous attribution must not leak
// cross-session state. Malformed records (empty id, prompt, or result)
// are skipped rather than failing the batch. The operation is
// idempotent: merging its own output with the same windows is a no-op.
func Merge(entries []types.ConversationEntry, history []types.HistoryRecord, tasks []types.TaskRecord, activeSessionID string) []types.ConversationEntry {
	filled := make(map[entryKey]bool, len(entries))
	placeholder := make(map[entryKey]int, 4)
	out := make([]types.ConversationEntry, len(entries), len(entries)+len(history)+len(tasks))
	copy(out, entries)
	for i, entry := range out {
		if entry.RequestID == "" {
			continue
		}
		key := entryKey{requestID: entry.RequestID, role: entry.Role}
		if entry.Content != "" {
			filled[key] = true
			continue
		}
		if _, ok := placeholder[key]; !ok {
			placeholder[key] = i
		}
	}

	fill := func(key entryKey, content string, at time.Time) {
		if content == "" || filled[key] {
			return
		}
		if i, ok := placeholder[key]; ok {
			out[i].Content = content
			filled[key] = true
			return
		}
		out = append(out, types.ConversationEntry{
			Role:      key.role,
			RequestID: key.requestID,
			Content:   content,
			Timestamp: at,
		})
		filled[key] = true
	}

	for _, record := range history {
		if record.RequestID == "" {
			continue
		}
		if excludeSession(record.SessionID, activeSessionID, true) {
			continue
		}
		fill(entryKey{requestID: record.RequestID, role: types.RoleUser}, record.Prompt, record.CreatedAt)
	}
	for _, record := range tasks {
		if record.TaskID == "" {
			continue
		}
		if excludeSession(record.OwningSession(), activeSessionID, false) {
			continue
		}
		fill(entryKey{requestID: record.TaskID, role: types.RoleAssistant}, record.Result, record.UpdatedAt)
	}
	return out
}

// excludeSession applies the cross-session rule: a record claimed by a
// different session never merges. Records with no attribution are
// excluded when strict (history records, once a session is active) and
// admitted otherwise (task records, which are already correlated through
// their request id).
func excludeSession(recordSession, activeSession string, strict bool) bool {
	if activeSession == "" {
		return false
	}
	if recordSession == "" {
		return strict
	}
	return recordSession != activeSession
}
