package stream

import "overseer/internal/types"

// InterestingTasks computes the set of task ids worth a live
// subscription: anything pending or processing in the history or task
// windows, plus the operator's explicit selection. Order follows the
// input windows with the selection first; duplicates collapse.
func InterestingTasks(history []types.HistoryRecord, tasks []types.TaskRecord, selectedID string) []string {
	seen := make(map[string]bool, len(history)+len(tasks)+1)
	out := make([]string, 0, len(history)+len(tasks)+1)
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}

	add(selectedID)
	for _, record := range history {
		if record.Status.Active() {
			add(record.RequestID)
		}
	}
	for _, record := range tasks {
		if record.Status.Active() {
			add(record.TaskID)
		}
	}
	return out
}
