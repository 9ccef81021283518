package stream

import (
	"testing"
	"time"

	"overseer/internal/logging"
	"overseer/internal/types"
)

func newTestTracker(cooldown time.Duration) (*Tracker, *time.Time) {
	tracker := NewTracker(cooldown, 64, logging.Nop())
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return now }
	return tracker, &now
}

func TestSyncInterestOpensAndCloses(t *testing.T) {
	tracker, _ := newTestTracker(time.Second)

	open := tracker.SyncInterest([]string{"t1", "t2"})
	if len(open) != 2 {
		t.Fatalf("expected 2 opens, got %v", open)
	}

	canceled := map[string]bool{}
	for _, id := range open {
		id := id
		tracker.Attach(id, make(chan types.TaskEvent), func() { canceled[id] = true })
	}
	if !tracker.Connected("t1") || !tracker.Connected("t2") {
		t.Fatalf("attached tasks must be connected")
	}

	open = tracker.SyncInterest([]string{"t2"})
	if len(open) != 0 {
		t.Fatalf("no new opens expected, got %v", open)
	}
	if !canceled["t1"] {
		t.Fatalf("dropped task must have its subscription released")
	}
	if _, tracked := tracker.State("t1"); tracked {
		t.Fatalf("dropped task must leave tracking")
	}
	if canceled["t2"] {
		t.Fatalf("surviving task must keep its subscription")
	}
}

func TestSyncInterestDoesNotDoubleOpen(t *testing.T) {
	tracker, _ := newTestTracker(time.Second)

	if open := tracker.SyncInterest([]string{"t1"}); len(open) != 1 {
		t.Fatalf("expected one open, got %v", open)
	}
	// Subscription still in flight: the same id must not be reissued.
	if open := tracker.SyncInterest([]string{"t1"}); len(open) != 0 {
		t.Fatalf("expected no reissue while opening, got %v", open)
	}
	tracker.Attach("t1", make(chan types.TaskEvent), func() {})
	if open := tracker.SyncInterest([]string{"t1"}); len(open) != 0 {
		t.Fatalf("expected no reopen of a live stream, got %v", open)
	}
}

func TestAttachAfterInterestLostReleasesImmediately(t *testing.T) {
	tracker, _ := newTestTracker(time.Second)
	tracker.SyncInterest([]string{"t1"})
	tracker.SyncInterest(nil)

	released := false
	tracker.Attach("t1", make(chan types.TaskEvent), func() { released = true })
	if !released {
		t.Fatalf("late attach for an uninteresting task must release its handle")
	}
}

func TestConsumeTickAppliesEvents(t *testing.T) {
	tracker, now := newTestTracker(time.Second)
	tracker.SyncInterest([]string{"t1"})

	events := make(chan types.TaskEvent, 4)
	tracker.Attach("t1", events, func() {})

	events <- types.TaskEvent{Kind: types.TaskEventUpdate, Status: types.TaskStatusProcessing, Timestamp: now.Add(-time.Second)}
	summary := tracker.ConsumeTick()
	if summary.Events != 1 || !summary.Advanced {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	state, _ := tracker.State("t1")
	if state.Status != types.TaskStatusProcessing {
		t.Fatalf("status not applied: %+v", state)
	}

	// Same status, older timestamp: a duplicate signal must not count
	// as progress.
	events <- types.TaskEvent{Kind: types.TaskEventUpdate, Status: types.TaskStatusProcessing, Timestamp: now.Add(-2 * time.Second)}
	summary = tracker.ConsumeTick()
	if summary.Advanced {
		t.Fatalf("duplicate event must not advance: %+v", summary)
	}
}

func TestConsumeTickTerminalEventClosesSubscription(t *testing.T) {
	tracker, _ := newTestTracker(time.Second)
	tracker.SyncInterest([]string{"t1"})

	events := make(chan types.TaskEvent, 1)
	released := false
	tracker.Attach("t1", events, func() { released = true })

	events <- types.TaskEvent{Kind: types.TaskEventFinished, Status: types.TaskStatusCompleted, Result: "done"}
	summary := tracker.ConsumeTick()
	if len(summary.Finished) != 1 || summary.Finished[0] != "t1" {
		t.Fatalf("terminal event not reported: %+v", summary)
	}
	if !released {
		t.Fatalf("terminal event must release the subscription")
	}
	state, tracked := tracker.State("t1")
	if !tracked {
		t.Fatalf("task must stay tracked until interest drops")
	}
	if state.Connected {
		t.Fatalf("connected flag must clear on close")
	}
	if state.Status != types.TaskStatusCompleted {
		t.Fatalf("terminal status not recorded: %+v", state)
	}
}

func TestConsumeTickStreamCloseMarksDisconnected(t *testing.T) {
	tracker, _ := newTestTracker(time.Second)
	tracker.SyncInterest([]string{"t1"})

	events := make(chan types.TaskEvent)
	tracker.Attach("t1", events, func() {})
	close(events)

	tracker.ConsumeTick()
	state, tracked := tracker.State("t1")
	if !tracked || state.Connected {
		t.Fatalf("closed stream must mark the task disconnected, state %+v tracked %v", state, tracked)
	}
	// Recovery is polling-driven: the next interest sync reopens.
	if open := tracker.SyncInterest([]string{"t1"}); len(open) != 1 {
		t.Fatalf("expected reopen after stream close, got %v", open)
	}
}

func TestMaybeRefreshCooldown(t *testing.T) {
	tracker, now := newTestTracker(5 * time.Second)

	if !tracker.MaybeRefresh("task:t1") {
		t.Fatalf("first refresh must pass")
	}
	if tracker.MaybeRefresh("task:t1") {
		t.Fatalf("refresh inside cooldown must be suppressed")
	}
	if !tracker.MaybeRefresh("task:t2") {
		t.Fatalf("cooldown is per scope")
	}
	*now = now.Add(6 * time.Second)
	if !tracker.MaybeRefresh("task:t1") {
		t.Fatalf("refresh after cooldown must pass")
	}
}

func TestInterestingTasks(t *testing.T) {
	history := []types.HistoryRecord{
		{RequestID: "h1", Status: types.TaskStatusPending},
		{RequestID: "h2", Status: types.TaskStatusCompleted},
	}
	tasks := []types.TaskRecord{
		{TaskID: "t1", Status: types.TaskStatusProcessing},
		{TaskID: "h1", Status: types.TaskStatusProcessing},
		{TaskID: "t2", Status: types.TaskStatusFailed},
	}

	got := InterestingTasks(history, tasks, "sel")
	want := []string{"sel", "h1", "t1"}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want %v, got %v", want, got)
		}
	}
}
