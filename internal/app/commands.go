package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"overseer/internal/client"
	"overseer/internal/store"
	"overseer/internal/types"
)

const fetchTimeout = 10 * time.Second

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func pollCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

func fetchHistoryCmd(api BackendAPI, limit int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		records, err := api.History(ctx, limit)
		return historyMsg{records: records, err: err}
	}
}

func fetchTasksCmd(api BackendAPI, limit int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		records, err := api.Tasks(ctx, limit)
		return tasksMsg{records: records, err: err}
	}
}

func checkIdentityCmd(checker IdentityChecker) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		result, err := checker.Check(ctx)
		return identityMsg{result: result, err: err}
	}
}

func submitPromptCmd(api BackendAPI, seq int, prompt, sessionID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		resp, err := api.SubmitPrompt(ctx, client.SubmitPromptRequest{Prompt: prompt, SessionID: sessionID})
		if err != nil {
			return submitMsg{seq: seq, err: err}
		}
		return submitMsg{seq: seq, requestID: resp.RequestID}
	}
}

func openStreamCmd(api StreamAPI, taskID string) tea.Cmd {
	return func() tea.Msg {
		events, cancel, err := api.TaskEvents(context.Background(), taskID)
		return streamOpenedMsg{taskID: taskID, events: events, cancel: cancel, err: err}
	}
}

func saveUIStateCmd(states store.UIStateStore, state types.UIState) tea.Cmd {
	if states == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		return uiStateSavedMsg{err: states.SaveUIState(ctx, &state)}
	}
}
