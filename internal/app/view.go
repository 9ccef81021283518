package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
)

func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "loading..."
	}
	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := max(minContentHeight, m.height-2)

	transcript := m.viewport.View()
	body := transcript
	if !m.sidebarCollapsed {
		sidebar := renderSidebar(m.taskRows, m.tracker.States(), m.selectedIndex, m.sidebarWidth(), bodyHeight)
		divider := strings.TrimRight(strings.Repeat(dividerStyle.Render("│")+"\n", bodyHeight), "\n")
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, divider, transcript)
	}
	return header + "\n" + body + "\n" + footer
}

func (m *Model) renderHeader() string {
	title := headerStyle.Render("overseer")
	session := ""
	if m.sessionID != "" {
		session = statusStyle.Render("  session " + m.sessionID)
	}
	backend := statusStyle.Render("  " + m.cfg.BackendAddress())
	follow := ""
	if m.follow {
		follow = helpStyle.Render("  [follow]")
	}
	return title + session + backend + follow
}

func (m *Model) renderFooter() string {
	if m.mode == uiModeCompose {
		return composePromptStyle.Render("> ") + m.input + "█"
	}
	help := helpStyle.Render("c compose · j/k select · f follow · tab sidebar · y copy · r refresh · R clear · q quit")
	if m.status == "" {
		return help
	}
	style := statusStyle
	if strings.Contains(m.status, "error") || strings.Contains(m.status, "failed") {
		style = statusErrorStyle
	}
	return style.Render(m.status) + "  " + help
}
