package client

import "overseer/internal/types"

type HistoryResponse struct {
	History []types.HistoryRecord `json:"history"`
}

type TasksResponse struct {
	Tasks []types.TaskRecord `json:"tasks"`
}

type SubmitPromptRequest struct {
	Prompt    string `json:"prompt"`
	SessionID string `json:"session_id,omitempty"`
}

type SubmitPromptResponse struct {
	RequestID string           `json:"request_id"`
	Status    types.TaskStatus `json:"status,omitempty"`
}
