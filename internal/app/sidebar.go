package app

import (
	"strings"
	"time"

	runewidth "github.com/mattn/go-runewidth"

	"overseer/internal/types"
)

type taskRow struct {
	requestID string
	title     string
	status    types.TaskStatus
	createdAt time.Time
}

// buildTaskRows produces the sidebar rows: history entries newest first,
// each annotated with the task status when a task record exists, followed
// by task records the history window no longer covers.
func buildTaskRows(history []types.HistoryRecord, tasks []types.TaskRecord) []taskRow {
	byID := make(map[string]types.TaskRecord, len(tasks))
	for _, task := range tasks {
		if task.TaskID != "" {
			byID[task.TaskID] = task
		}
	}
	seen := make(map[string]bool, len(history))

	rows := make([]taskRow, 0, len(history)+len(tasks))
	for i := len(history) - 1; i >= 0; i-- {
		record := history[i]
		if record.RequestID == "" || seen[record.RequestID] {
			continue
		}
		seen[record.RequestID] = true
		row := taskRow{
			requestID: record.RequestID,
			title:     firstLine(record.Prompt),
			status:    record.Status,
			createdAt: record.CreatedAt,
		}
		if task, ok := byID[record.RequestID]; ok {
			row.status = task.Status
		}
		rows = append(rows, row)
	}
	for _, task := range tasks {
		if task.TaskID == "" || seen[task.TaskID] {
			continue
		}
		seen[task.TaskID] = true
		rows = append(rows, taskRow{
			requestID: task.TaskID,
			title:     task.TaskID,
			status:    task.Status,
			createdAt: task.UpdatedAt,
		})
	}
	return rows
}

func renderSidebar(rows []taskRow, states map[string]types.StreamState, selected, width, height int) string {
	lines := make([]string, 0, height)
	lines = append(lines, headerStyle.Render(runewidth.Truncate("Tasks", width, "")))
	for i, row := range rows {
		if len(lines) >= height {
			break
		}
		lines = append(lines, renderTaskRow(row, states[row.requestID], i == selected, width))
	}
	if len(rows) == 0 {
		lines = append(lines, metaStyle.Render("no tasks"))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func renderTaskRow(row taskRow, state types.StreamState, selected bool, width int) string {
	dot := " "
	switch {
	case state.Connected:
		dot = liveDotStyle.Render("●")
	case state.Status != "":
		dot = staleDotStyle.Render("◌")
	}
	// Truncate before styling so escape sequences don't count as width.
	label := runewidth.Truncate(statusGlyph(row.status)+" "+row.title, max(1, width-2), "…")
	if selected {
		return dot + " " + selectedRowStyle.Render(label)
	}
	switch row.status {
	case types.TaskStatusPending, types.TaskStatusProcessing:
		return dot + " " + taskActiveStyle.Render(label)
	case types.TaskStatusFailed:
		return dot + " " + taskFailedStyle.Render(label)
	default:
		return dot + " " + taskRowStyle.Render(label)
	}
}

func statusGlyph(status types.TaskStatus) string {
	switch status {
	case types.TaskStatusPending:
		return "·"
	case types.TaskStatusProcessing:
		return "~"
	case types.TaskStatusCompleted:
		return "✓"
	case types.TaskStatusFailed:
		return "✗"
	case types.TaskStatusCancelled:
		return "–"
	default:
		return "?"
	}
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	if text == "" {
		return "(empty prompt)"
	}
	return text
}
