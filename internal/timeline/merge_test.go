package timeline

import (
	"reflect"
	"testing"
	"time"

	"overseer/internal/types"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed
}

func TestMergeSynthesizesMissingUserEntry(t *testing.T) {
	entries := []types.ConversationEntry{
		{Role: types.RoleAssistant, RequestID: "r1", Content: "A1", Timestamp: at(t, "2026-08-30T10:00:05Z")},
	}
	history := []types.HistoryRecord{
		{RequestID: "r1", Prompt: "Q1", CreatedAt: at(t, "2026-08-30T10:00:00Z")},
	}

	merged := Merge(entries, history, nil, "")
	if len(merged) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(merged))
	}
	ordered := Order(merged)
	if ordered[0].Role != types.RoleUser || ordered[0].Content != "Q1" {
		t.Fatalf("expected synthesized user entry first, got %+v", ordered[0])
	}
	if ordered[1].Role != types.RoleAssistant || ordered[1].Content != "A1" {
		t.Fatalf("expected assistant entry second, got %+v", ordered[1])
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	entries := []types.ConversationEntry{
		{Role: types.RoleUser, RequestID: "r1", Content: "Q1", Timestamp: at(t, "2026-08-30T10:00:00Z")},
	}
	history := []types.HistoryRecord{
		{RequestID: "r1", Prompt: "Q1", CreatedAt: at(t, "2026-08-30T10:00:00Z")},
		{RequestID: "r2", Prompt: "Q2", CreatedAt: at(t, "2026-08-30T10:01:00Z")},
	}
	tasks := []types.TaskRecord{
		{TaskID: "r1", Status: types.TaskStatusCompleted, Result: "A1", UpdatedAt: at(t, "2026-08-30T10:00:30Z")},
		{TaskID: "r2", Status: types.TaskStatusProcessing, UpdatedAt: at(t, "2026-08-30T10:01:10Z")},
	}

	once := Merge(entries, history, tasks, "")
	twice := Merge(once, history, tasks, "")
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge is not idempotent:\n once: %+v\ntwice: %+v", once, twice)
	}
}

func TestMergeNeverOverwritesExistingContent(t *testing.T) {
	entries := []types.ConversationEntry{
		{Role: types.RoleAssistant, RequestID: "r4", Content: "A4", Timestamp: at(t, "2026-08-30T10:00:00Z")},
	}
	tasks := []types.TaskRecord{
		{TaskID: "r4", Status: types.TaskStatusCompleted, Result: "A4-from-task", UpdatedAt: at(t, "2026-08-30T10:05:00Z")},
	}

	merged := Merge(entries, nil, tasks, "")
	if len(merged) != 1 {
		t.Fatalf("expected untouched entry set, got %d entries", len(merged))
	}
	if merged[0].Content != "A4" {
		t.Fatalf("existing content was replaced: %q", merged[0].Content)
	}
}

func TestMergeFillsEmptyPlaceholderInPlace(t *testing.T) {
	entries := []types.ConversationEntry{
		{Role: types.RoleAssistant, RequestID: "r1", Timestamp: at(t, "2026-08-30T10:00:00Z")},
	}
	tasks := []types.TaskRecord{
		{TaskID: "r1", Status: types.TaskStatusCompleted, Result: "A1", UpdatedAt: at(t, "2026-08-30T10:00:30Z")},
	}

	merged := Merge(entries, nil, tasks, "")
	if len(merged) != 1 {
		t.Fatalf("placeholder fill must not duplicate the pair, got %d entries", len(merged))
	}
	if merged[0].Content != "A1" {
		t.Fatalf("placeholder was not filled: %+v", merged[0])
	}
	if entries[0].Content != "" {
		t.Fatalf("input slice was mutated")
	}
}

func TestMergeSessionExclusion(t *testing.T) {
	created := at(t, "2026-08-30T10:00:00Z")
	tests := []struct {
		name    string
		active  string
		history types.HistoryRecord
		want    int
	}{
		{
			name:    "matching session merges",
			active:  "session-current",
			history: types.HistoryRecord{RequestID: "r1", Prompt: "Q1", SessionID: "session-current", CreatedAt: created},
			want:    1,
		},
		{
			name:    "foreign session excluded",
			active:  "session-current",
			history: types.HistoryRecord{RequestID: "r1", Prompt: "Q1", SessionID: "session-other", CreatedAt: created},
			want:    0,
		},
		{
			name:    "unattributed record excluded once a session is active",
			active:  "session-current",
			history: types.HistoryRecord{RequestID: "r1", Prompt: "Q1", CreatedAt: created},
			want:    0,
		},
		{
			name:    "no active session admits everything",
			active:  "",
			history: types.HistoryRecord{RequestID: "r1", Prompt: "Q1", SessionID: "session-other", CreatedAt: created},
			want:    1,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			merged := Merge(nil, []types.HistoryRecord{tc.history}, nil, tc.active)
			if len(merged) != tc.want {
				t.Fatalf("expected %d entries, got %d", tc.want, len(merged))
			}
		})
	}
}

func TestMergeTaskFromOtherSessionNeverProducesEntry(t *testing.T) {
	task := types.TaskRecord{
		TaskID:    "r1",
		Status:    types.TaskStatusCompleted,
		Result:    "stolen",
		UpdatedAt: at(t, "2026-08-30T10:00:00Z"),
		ContextHistory: []types.ContextMessage{
			{Role: "user", Content: "hi", SessionID: "session-other"},
		},
	}
	merged := Merge(nil, nil, []types.TaskRecord{task}, "session-current")
	if len(merged) != 0 {
		t.Fatalf("cross-session task produced %d entries", len(merged))
	}
}

func TestMergeTaskWithoutAttributionMerges(t *testing.T) {
	task := types.TaskRecord{
		TaskID:    "r1",
		Status:    types.TaskStatusCompleted,
		Result:    "A1",
		UpdatedAt: at(t, "2026-08-30T10:00:00Z"),
	}
	merged := Merge(nil, nil, []types.TaskRecord{task}, "session-current")
	if len(merged) != 1 {
		t.Fatalf("expected task correlated by request id to merge, got %d entries", len(merged))
	}
}

func TestMergeSkipsMalformedRecords(t *testing.T) {
	history := []types.HistoryRecord{
		{RequestID: "", Prompt: "orphan", CreatedAt: at(t, "2026-08-30T10:00:00Z")},
		{RequestID: "r1", CreatedAt: at(t, "2026-08-30T10:00:00Z")},
		{RequestID: "r2", Prompt: "Q2", CreatedAt: at(t, "2026-08-30T10:01:00Z")},
	}
	tasks := []types.TaskRecord{
		{TaskID: "r2", Status: types.TaskStatusProcessing, UpdatedAt: at(t, "2026-08-30T10:01:05Z")},
	}
	merged := Merge(nil, history, tasks, "")
	if len(merged) != 1 {
		t.Fatalf("expected only the well-formed record to merge, got %d entries", len(merged))
	}
	if merged[0].RequestID != "r2" || merged[0].Role != types.RoleUser {
		t.Fatalf("unexpected merged entry: %+v", merged[0])
	}
}
