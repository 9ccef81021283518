package app

import (
	"fmt"
	"strings"
	"time"

	xansi "github.com/charmbracelet/x/ansi"

	"overseer/internal/types"
)

// renderTranscript turns the ordered display entries into the scrollable
// transcript body. User prompts render literally inside a shaded bubble;
// assistant results render as markdown.
func renderTranscript(entries []types.ConversationEntry, width int) string {
	if len(entries) == 0 {
		return metaStyle.Render("No conversation yet. Press c to compose a prompt.")
	}
	bubbleWidth := max(minViewportWidth-4, width-4)
	now := time.Now()

	blocks := make([]string, 0, len(entries))
	for _, entry := range entries {
		blocks = append(blocks, renderEntry(entry, bubbleWidth, now))
	}
	return strings.Join(blocks, "\n")
}

func renderEntry(entry types.ConversationEntry, width int, now time.Time) string {
	var body, meta string
	switch entry.Role {
	case types.RoleUser:
		body = userBubbleStyle.Width(width).Render(xansi.Hardwrap(escapeMarkdown(entry.Content), width-2, true))
		meta = entryMeta("you", entry, now)
	default:
		body = agentBubbleStyle.Width(width).Render(renderMarkdown(entry.Content, width-2))
		meta = entryMeta("assistant", entry, now)
	}
	return meta + "\n" + body
}

func entryMeta(who string, entry types.ConversationEntry, now time.Time) string {
	parts := []string{who}
	if entry.RequestID != "" {
		parts = append(parts, entry.RequestID)
	}
	if stamp := relativeTimestamp(entry.Timestamp, now); stamp != "" {
		parts = append(parts, stamp)
	}
	line := strings.Join(parts, " · ")
	if entry.Role == types.RoleUser && entry.RequestID == "" {
		return pendingMetaStyle.Render(line + " · sending")
	}
	return metaStyle.Render(line)
}

func relativeTimestamp(createdAt, now time.Time) string {
	if createdAt.IsZero() {
		return ""
	}
	if now.IsZero() {
		now = time.Now()
	}
	delta := now.Sub(createdAt)
	if delta < 0 {
		delta = 0
	}
	if delta < 30*time.Second {
		return "just now"
	}
	if delta < time.Minute {
		secs := int(delta.Round(time.Second).Seconds())
		if secs <= 1 {
			return "1 second ago"
		}
		return fmt.Sprintf("%d seconds ago", secs)
	}
	if delta < time.Hour {
		minutes := int(delta.Round(time.Minute).Minutes())
		if minutes <= 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	}
	if delta < 24*time.Hour {
		hours := int(delta.Round(time.Hour).Hours())
		if hours <= 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := int(delta.Round(24*time.Hour).Hours() / 24)
	if days <= 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
