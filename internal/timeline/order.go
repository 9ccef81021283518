package timeline

import "overseer/internal/types"

// Order produces the display sequence for an unordered merged entry set.
//
// Entries sharing a request id form a group; groups are ranked by the
// input position of their first-encountered member, so conversational
// turns keep their arrival order even when the user and assistant halves
// arrived in separate passes. Within a group the user entry precedes the
// assistant entry regardless of timestamps, because a prompt is causally
// prior to its answer even if reconciliation synthesized the answer
// first. Entries without a request id have no causal key and trail the
// grouped entries in their original relative order; timestamps are not
// consulted at all, which keeps the result immune to clock skew between
// sources. Rank ties inside a single batch fall back to the batch's own
// iteration order.
func Order(entries []types.ConversationEntry) []types.ConversationEntry {
	if len(entries) == 0 {
		return nil
	}
	groupRank := make(map[string]int, len(entries))
	groups := make([][]types.ConversationEntry, 0, len(entries))
	ungrouped := make([]types.ConversationEntry, 0)
	for _, entry := range entries {
		if entry.RequestID == "" {
			ungrouped = append(ungrouped, entry)
			continue
		}
		rank, ok := groupRank[entry.RequestID]
		if !ok {
			rank = len(groups)
			groupRank[entry.RequestID] = rank
			groups = append(groups, nil)
		}
		groups[rank] = append(groups[rank], entry)
	}

	out := make([]types.ConversationEntry, 0, len(entries))
	for _, group := range groups {
		for _, entry := range group {
			if entry.Role == types.RoleUser {
				out = append(out, entry)
			}
		}
		for _, entry := range group {
			if entry.Role != types.RoleUser {
				out = append(out, entry)
			}
		}
	}
	return append(out, ungrouped...)
}
