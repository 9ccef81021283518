// Package app is the terminal UI of the operator console. The model owns
// the merged conversation entry set and the per-task stream tracker, and
// re-runs the reconciliation pipeline whenever any source delivers new
// data: the history and task polls, the live streams, the operator's own
// optimistic submissions, or a session reset.
package app

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"

	"overseer/internal/config"
	"overseer/internal/logging"
	"overseer/internal/store"
	"overseer/internal/stream"
	"overseer/internal/timeline"
	"overseer/internal/types"
)

const (
	tickInterval     = 250 * time.Millisecond
	maxEventsPerTick = 64
	minListWidth     = 24
	maxListWidth     = 40
	minViewportWidth = 20
	minContentHeight = 6
)

type uiMode int

const (
	uiModeNormal uiMode = iota
	uiModeCompose
)

type pendingSend struct {
	entryIndex int
	prompt     string
}

type Model struct {
	backend  BackendAPI
	streams  StreamAPI
	identity IdentityChecker
	states   store.UIStateStore
	cfg      config.Config
	log      logging.Logger

	tracker *stream.Tracker

	width  int
	height int
	mode   uiMode

	viewport viewport.Model
	follow   bool

	entries       []types.ConversationEntry
	display       []types.ConversationEntry
	history       []types.HistoryRecord
	tasks         []types.TaskRecord
	sessionID     string
	resetBoundary *time.Time

	taskRows         []taskRow
	selectedIndex    int
	sidebarCollapsed bool

	input   string
	status  string
	sendSeq int
	pending map[int]pendingSend
}

type Options struct {
	Backend  BackendAPI
	Streams  StreamAPI
	Identity IdentityChecker
	States   store.UIStateStore
	Config   config.Config
	Logger   logging.Logger
}

func NewModel(opts Options) *Model {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	vp := viewport.New(viewport.WithWidth(minViewportWidth), viewport.WithHeight(minContentHeight))
	vp.SetContent("Connecting to backend...")

	return &Model{
		backend:  opts.Backend,
		streams:  opts.Streams,
		identity: opts.Identity,
		states:   opts.States,
		cfg:      opts.Config,
		log:      log,
		tracker:  stream.NewTracker(opts.Config.RefreshCooldown(), maxEventsPerTick, log),
		viewport: vp,
		follow:   true,
		pending:  map[int]pendingSend{},
		status:   "connecting",
	}
}

func Run(opts Options) error {
	model := NewModel(opts)
	if model.states != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if state, err := model.states.UIState(ctx); err == nil && state != nil {
			model.follow = state.FollowTranscript
			model.sidebarCollapsed = state.SidebarCollapsed
		}
		cancel()
	}
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		checkIdentityCmd(m.identity),
		fetchHistoryCmd(m.backend, m.cfg.HistoryLimit()),
		fetchTasksCmd(m.backend, m.cfg.TaskLimit()),
		tickCmd(),
		pollCmd(m.cfg.PollInterval()),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tickMsg:
		summary := m.tracker.ConsumeTick()
		cmds := []tea.Cmd{tickCmd()}
		if summary.Events > 0 {
			m.renderTranscript()
		}
		if summary.Advanced && m.tracker.MaybeRefresh(m.refreshScope()) {
			cmds = append(cmds,
				fetchHistoryCmd(m.backend, m.cfg.HistoryLimit()),
				fetchTasksCmd(m.backend, m.cfg.TaskLimit()),
			)
		}
		return m, tea.Batch(cmds...)

	case pollMsg:
		return m, tea.Batch(
			checkIdentityCmd(m.identity),
			fetchHistoryCmd(m.backend, m.cfg.HistoryLimit()),
			fetchTasksCmd(m.backend, m.cfg.TaskLimit()),
			pollCmd(m.cfg.PollInterval()),
		)

	case identityMsg:
		m.applyIdentity(msg)
		return m, nil

	case historyMsg:
		if msg.err != nil {
			m.status = "history error: " + msg.err.Error()
			return m, nil
		}
		m.history = msg.records
		m.status = ""
		m.reconcile()
		return m, m.syncStreams()

	case tasksMsg:
		if msg.err != nil {
			m.status = "tasks error: " + msg.err.Error()
			return m, nil
		}
		m.tasks = msg.records
		m.reconcile()
		return m, m.syncStreams()

	case streamOpenedMsg:
		if msg.err != nil {
			m.tracker.OpenFailed(msg.taskID, msg.err)
			return m, nil
		}
		m.tracker.Attach(msg.taskID, msg.events, msg.cancel)
		return m, nil

	case submitMsg:
		m.applySubmitResult(msg)
		return m, nil

	case uiStateSavedMsg:
		if msg.err != nil {
			m.log.Warn("ui state save failed", logging.F("error", msg.err))
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == uiModeCompose {
		return m.handleComposeKey(msg)
	}
	switch msg.String() {
	case "q", "ctrl+c":
		m.shutdown()
		return m, tea.Quit
	case "c", "i":
		m.mode = uiModeCompose
		m.input = ""
		m.status = "compose: enter to send, esc to cancel"
		return m, nil
	case "j", "down":
		return m, m.moveSelection(1)
	case "k", "up":
		return m, m.moveSelection(-1)
	case "f":
		m.follow = !m.follow
		if m.follow {
			m.viewport.GotoBottom()
		}
		return m, m.saveUIState()
	case "tab":
		m.sidebarCollapsed = !m.sidebarCollapsed
		m.resize(m.width, m.height)
		return m, m.saveUIState()
	case "y":
		m.copySelectedEntry()
		return m, nil
	case "r":
		return m, tea.Batch(
			fetchHistoryCmd(m.backend, m.cfg.HistoryLimit()),
			fetchTasksCmd(m.backend, m.cfg.TaskLimit()),
		)
	case "R":
		m.localReset()
		return m, nil
	case "g":
		m.follow = false
		m.viewport.GotoTop()
		return m, nil
	case "G":
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = uiModeNormal
		m.input = ""
		m.status = ""
		return m, nil
	case "enter":
		prompt := strings.TrimSpace(m.input)
		m.mode = uiModeNormal
		m.input = ""
		if prompt == "" {
			m.status = ""
			return m, nil
		}
		return m, m.submitPrompt(prompt)
	case "backspace":
		if len(m.input) > 0 {
			runes := []rune(m.input)
			m.input = string(runes[:len(runes)-1])
		}
		return m, nil
	case "space":
		m.input += " "
		return m, nil
	default:
		if key := msg.String(); len([]rune(key)) == 1 {
			m.input += key
		}
		return m, nil
	}
}

// submitPrompt buffers an optimistic user entry immediately and sends the
// prompt to the backend; the backend-assigned request id is attached when
// the submission confirms, letting the next merge pass adopt the entry
// instead of synthesizing a duplicate from history.
func (m *Model) submitPrompt(prompt string) tea.Cmd {
	m.sendSeq++
	seq := m.sendSeq
	m.entries = append(m.entries, types.ConversationEntry{
		Role:      types.RoleUser,
		Content:   prompt,
		Timestamp: time.Now().UTC(),
	})
	m.pending[seq] = pendingSend{entryIndex: len(m.entries) - 1, prompt: prompt}
	m.status = "sending..."
	m.reconcile()
	return submitPromptCmd(m.backend, seq, prompt, m.sessionID)
}

func (m *Model) applySubmitResult(msg submitMsg) {
	send, ok := m.pending[msg.seq]
	delete(m.pending, msg.seq)
	if msg.err != nil {
		m.status = "send failed: " + msg.err.Error()
		return
	}
	if !ok || msg.requestID == "" {
		return
	}
	m.entries = withRequestID(m.entries, send.entryIndex, send.prompt, msg.requestID)
	m.status = "sent " + msg.requestID
	m.reconcile()
}

func (m *Model) applyIdentity(msg identityMsg) {
	if msg.err != nil {
		m.status = "identity error: " + msg.err.Error()
		return
	}
	identity := msg.result.Identity
	if msg.result.Reset {
		m.entries = nil
		m.display = nil
		m.pending = map[int]pendingSend{}
		m.tracker.SyncInterest(nil)
		m.status = "session reset (backend restarted or client upgraded)"
		m.log.Info("discarding local transcript", logging.F("session_id", identity.SessionID))
	}
	if identity.SessionID != "" {
		m.sessionID = identity.SessionID
	}
	// A later local boundary (the R hotkey) wins over the persisted one.
	if b := identity.ResetBoundary; b != nil && (m.resetBoundary == nil || b.After(*m.resetBoundary)) {
		m.resetBoundary = b
	}
	if msg.result.Reset {
		m.reconcile()
	}
}

// reconcile is one pass of merge, order, filter over the current source
// snapshot, followed by re-rendering.
func (m *Model) reconcile() {
	m.entries = timeline.Merge(m.entries, m.history, m.tasks, m.sessionID)
	m.display = timeline.FilterAfterReset(timeline.Order(m.entries), m.resetBoundary)
	m.taskRows = buildTaskRows(m.history, m.tasks)
	if m.selectedIndex >= len(m.taskRows) {
		m.selectedIndex = max(0, len(m.taskRows)-1)
	}
	m.renderTranscript()
}

func (m *Model) renderTranscript() {
	m.viewport.SetContent(renderTranscript(m.display, m.transcriptWidth()))
	if m.follow {
		m.viewport.GotoBottom()
	}
}

func (m *Model) syncStreams() tea.Cmd {
	ids := stream.InterestingTasks(m.history, m.tasks, m.selectedTaskID())
	open := m.tracker.SyncInterest(ids)
	if len(open) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(open))
	for _, id := range open {
		cmds = append(cmds, openStreamCmd(m.streams, id))
	}
	return tea.Batch(cmds...)
}

func (m *Model) moveSelection(delta int) tea.Cmd {
	if len(m.taskRows) == 0 {
		return nil
	}
	next := clamp(m.selectedIndex+delta, 0, len(m.taskRows)-1)
	if next == m.selectedIndex {
		return nil
	}
	m.selectedIndex = next
	// Selection is part of the interesting set; re-evaluate streams.
	return m.syncStreams()
}

func (m *Model) selectedTaskID() string {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.taskRows) {
		return ""
	}
	return m.taskRows[m.selectedIndex].requestID
}

// localReset hides everything before now without touching the persisted
// identity; the next backend or client change still resets normally.
func (m *Model) localReset() {
	boundary := time.Now().UTC()
	m.resetBoundary = &boundary
	m.entries = nil
	m.pending = map[int]pendingSend{}
	m.status = "transcript cleared"
	m.reconcile()
}

func (m *Model) refreshScope() string {
	if id := m.selectedTaskID(); id != "" {
		return "task:" + id
	}
	return "session:" + m.sessionID
}

func (m *Model) copySelectedEntry() {
	if len(m.display) == 0 {
		m.status = "nothing to copy"
		return
	}
	entry := m.display[len(m.display)-1]
	if id := m.selectedTaskID(); id != "" {
		for _, candidate := range m.display {
			if candidate.RequestID == id && candidate.Role == types.RoleAssistant {
				entry = candidate
			}
		}
	}
	if _, err := copyTextToClipboard(entry.Content); err != nil {
		m.status = "copy failed: " + err.Error()
		return
	}
	m.status = "copied " + string(entry.Role) + " entry"
}

func (m *Model) saveUIState() tea.Cmd {
	return saveUIStateCmd(m.states, types.UIState{
		FollowTranscript: m.follow,
		SelectedTaskID:   m.selectedTaskID(),
		SidebarCollapsed: m.sidebarCollapsed,
	})
}

func (m *Model) shutdown() {
	m.tracker.Close()
	if m.states != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = m.states.SaveUIState(ctx, &types.UIState{
			FollowTranscript: m.follow,
			SelectedTaskID:   m.selectedTaskID(),
			SidebarCollapsed: m.sidebarCollapsed,
		})
		cancel()
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	contentHeight := max(minContentHeight, height-2)
	m.viewport.SetWidth(m.transcriptWidth())
	m.viewport.SetHeight(contentHeight)
	m.renderTranscript()
}

func (m *Model) transcriptWidth() int {
	width := m.width
	if width <= 0 {
		return minViewportWidth
	}
	if !m.sidebarCollapsed {
		width -= m.sidebarWidth() + 1
	}
	return max(minViewportWidth, width)
}

func (m *Model) sidebarWidth() int {
	if m.width <= 0 {
		return minListWidth
	}
	return clamp(m.width/3, minListWidth, maxListWidth)
}

// withRequestID returns a copy of entries with the optimistic entry at
// index stamped with its confirmed request id. The index is validated
// against the remembered prompt because a session reset may have
// discarded the slice while the submission was in flight.
func withRequestID(entries []types.ConversationEntry, index int, prompt, requestID string) []types.ConversationEntry {
	if index < 0 || index >= len(entries) {
		return entries
	}
	if entries[index].Role != types.RoleUser || entries[index].Content != prompt || entries[index].RequestID != "" {
		return entries
	}
	out := make([]types.ConversationEntry, len(entries))
	copy(out, entries)
	out[index].RequestID = requestID
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
