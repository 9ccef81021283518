package app

import (
	"testing"
	"time"

	"overseer/internal/types"
)

func TestBuildTaskRowsNewestFirstWithTaskStatusOverlay(t *testing.T) {
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	history := []types.HistoryRecord{
		{RequestID: "a", Prompt: "first prompt", CreatedAt: base, Status: types.TaskStatusPending},
		{RequestID: "b", Prompt: "second prompt", CreatedAt: base.Add(time.Minute), Status: types.TaskStatusPending},
	}
	tasks := []types.TaskRecord{
		{TaskID: "a", Status: types.TaskStatusCompleted, UpdatedAt: base.Add(30 * time.Second)},
		{TaskID: "orphan", Status: types.TaskStatusProcessing, UpdatedAt: base.Add(2 * time.Minute)},
	}

	rows := buildTaskRows(history, tasks)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].requestID != "b" || rows[1].requestID != "a" {
		t.Fatalf("expected newest history first, got %q then %q", rows[0].requestID, rows[1].requestID)
	}
	if rows[1].status != types.TaskStatusCompleted {
		t.Fatalf("task status should overlay history status, got %v", rows[1].status)
	}
	if rows[2].requestID != "orphan" {
		t.Fatalf("tasks outside the history window should trail, got %q", rows[2].requestID)
	}
}

func TestBuildTaskRowsSkipsBlankAndDuplicateIDs(t *testing.T) {
	history := []types.HistoryRecord{
		{RequestID: "", Prompt: "malformed"},
		{RequestID: "a", Prompt: "kept"},
		{RequestID: "a", Prompt: "duplicate"},
	}
	rows := buildTaskRows(history, nil)
	if len(rows) != 1 || rows[0].requestID != "a" {
		t.Fatalf("expected single row for a, got %+v", rows)
	}
}

func TestFirstLineTruncatesAtNewline(t *testing.T) {
	if got := firstLine("  multi\nline prompt"); got != "multi" {
		t.Fatalf("got %q", got)
	}
	if got := firstLine("  \n  "); got != "(empty prompt)" {
		t.Fatalf("got %q", got)
	}
}
