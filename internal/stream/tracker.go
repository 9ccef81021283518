// Package stream maintains live event subscriptions for the set of tasks
// currently worth watching, exposes per-task liveness, and rate-limits
// the history refreshes that stream activity triggers.
package stream

import (
	"context"
	"time"

	"overseer/internal/logging"
	"overseer/internal/types"
)

// Subscriber is the transport capability the tracker consumes. Any
// transport works: a long-lived SSE connection, a polling-emulated
// stream, or a message queue consumer.
type Subscriber interface {
	TaskEvents(ctx context.Context, taskID string) (<-chan types.TaskEvent, func(), error)
}

type subscription struct {
	events <-chan types.TaskEvent
	cancel func()
}

// Tracker owns one subscription handle per interesting task id. It is
// driven from a single goroutine: the UI tick loop calls ConsumeTick to
// drain event channels, and SyncInterest whenever the upstream windows
// change. Recovery after a stream failure is not retried here; the next
// interest sync simply reports the id as needing a fresh subscription.
type Tracker struct {
	states      map[string]types.StreamState
	subs        map[string]*subscription
	opening     map[string]bool
	lastRefresh map[string]time.Time
	cooldown    time.Duration
	maxPerTick  int
	now         func() time.Time
	log         logging.Logger
}

// TickSummary reports what one drain pass observed.
type TickSummary struct {
	Events   int
	Advanced bool
	Finished []string
}

func NewTracker(cooldown time.Duration, maxEventsPerTick int, log logging.Logger) *Tracker {
	if maxEventsPerTick <= 0 {
		maxEventsPerTick = 64
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Tracker{
		states:      map[string]types.StreamState{},
		subs:        map[string]*subscription{},
		opening:     map[string]bool{},
		lastRefresh: map[string]time.Time{},
		cooldown:    cooldown,
		maxPerTick:  maxEventsPerTick,
		now:         time.Now,
		log:         log,
	}
}

// SyncInterest reconciles the tracked set against the interesting ids
// and returns the ids that need a subscription opened. Ids that dropped
// out of interest have their handles released before this returns; a
// tracked id whose stream died earlier is reported for reopening.
func (t *Tracker) SyncInterest(ids []string) (open []string) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		want[id] = true
	}

	for id := range t.states {
		if want[id] {
			continue
		}
		t.release(id)
		delete(t.states, id)
		delete(t.opening, id)
		delete(t.lastRefresh, id)
	}

	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, tracked := t.states[id]; !tracked {
			t.states[id] = types.StreamState{}
		}
		if t.subs[id] == nil && !t.opening[id] {
			t.opening[id] = true
			open = append(open, id)
		}
	}
	return open
}

// Attach installs an opened subscription handle. If interest was lost
// while the subscription was being opened, the handle is released
// immediately so no orphan stream outlives its task.
func (t *Tracker) Attach(taskID string, events <-chan types.TaskEvent, cancel func()) {
	delete(t.opening, taskID)
	state, tracked := t.states[taskID]
	if !tracked {
		if cancel != nil {
			cancel()
		}
		return
	}
	t.release(taskID)
	t.subs[taskID] = &subscription{events: events, cancel: cancel}
	state.Connected = true
	t.states[taskID] = state
	t.log.Debug("stream attached", logging.F("task_id", taskID))
}

// OpenFailed records a failed subscription attempt. The task stays
// tracked; the next interest sync will ask for a new attempt.
func (t *Tracker) OpenFailed(taskID string, err error) {
	delete(t.opening, taskID)
	if state, tracked := t.states[taskID]; tracked {
		state.Connected = false
		t.states[taskID] = state
	}
	t.log.Warn("stream open failed", logging.F("task_id", taskID), logging.F("error", err))
}

// ConsumeTick drains pending events from every live subscription, at
// most maxPerTick per stream, and applies them to the per-task states.
// Advanced is set only when an event actually moved a task's
// LastEventAt or status forward, which is the signal gating history
// refreshes.
func (t *Tracker) ConsumeTick() TickSummary {
	summary := TickSummary{}
	budget := t.maxPerTick
	for id, sub := range t.subs {
		for budget > 0 {
			select {
			case event, ok := <-sub.events:
				if !ok {
					t.streamClosed(id)
					budget = 0
					continue
				}
				budget--
				summary.Events++
				if t.applyEvent(id, event) {
					summary.Advanced = true
				}
				if event.Terminal() {
					summary.Finished = append(summary.Finished, id)
					t.release(id)
					budget = 0
				}
			default:
				budget = 0
			}
		}
		budget = t.maxPerTick
	}
	return summary
}

func (t *Tracker) applyEvent(taskID string, event types.TaskEvent) bool {
	state, tracked := t.states[taskID]
	if !tracked {
		return false
	}
	at := event.Timestamp
	if at.IsZero() {
		at = t.now()
	}
	advanced := at.After(state.LastEventAt)
	if event.Status != "" && event.Status != state.Status {
		state.Status = event.Status
		advanced = true
	}
	if advanced {
		state.LastEventAt = at
	}
	t.states[taskID] = state
	return advanced
}

func (t *Tracker) streamClosed(taskID string) {
	t.release(taskID)
	if state, tracked := t.states[taskID]; tracked {
		state.Connected = false
		t.states[taskID] = state
	}
	t.log.Debug("stream closed", logging.F("task_id", taskID))
}

func (t *Tracker) release(taskID string) {
	if sub := t.subs[taskID]; sub != nil {
		if sub.cancel != nil {
			sub.cancel()
		}
		delete(t.subs, taskID)
	}
	if state, tracked := t.states[taskID]; tracked {
		state.Connected = false
		t.states[taskID] = state
	}
}

// MaybeRefresh asks whether stream activity in the given scope may
// trigger a history refresh now. It is the backpressure valve between a
// burst of stream events and the history endpoint: at most one refresh
// per cooldown interval per scope.
func (t *Tracker) MaybeRefresh(scope string) bool {
	now := t.now()
	if last, ok := t.lastRefresh[scope]; ok && now.Sub(last) < t.cooldown {
		return false
	}
	t.lastRefresh[scope] = now
	return true
}

// State returns the liveness snapshot for one task.
func (t *Tracker) State(taskID string) (types.StreamState, bool) {
	state, ok := t.states[taskID]
	return state, ok
}

// States returns a copy of all per-task snapshots for rendering.
func (t *Tracker) States() map[string]types.StreamState {
	out := make(map[string]types.StreamState, len(t.states))
	for id, state := range t.states {
		out[id] = state
	}
	return out
}

// Connected reports whether the task currently has a live subscription.
func (t *Tracker) Connected(taskID string) bool {
	state, ok := t.states[taskID]
	return ok && state.Connected
}

// Close releases every subscription handle.
func (t *Tracker) Close() {
	for id := range t.subs {
		t.release(id)
	}
}
