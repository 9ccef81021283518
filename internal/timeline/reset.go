package timeline

import (
	"time"

	"overseer/internal/types"
)

// FilterAfterReset drops every entry whose timestamp is at or before the
// reset boundary. A nil boundary passes everything through. Comparison is
// on time values, never on string forms, so formatting differences
// between sources cannot reorder the cut.
func FilterAfterReset(entries []types.ConversationEntry, boundary *time.Time) []types.ConversationEntry {
	if boundary == nil {
		return entries
	}
	out := make([]types.ConversationEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Timestamp.After(*boundary) {
			out = append(out, entry)
		}
	}
	return out
}
