package app

import (
	"context"

	"overseer/internal/client"
	"overseer/internal/session"
	"overseer/internal/types"
)

// BackendAPI is the query surface the console consumes. *client.Client
// satisfies it; tests substitute fakes.
type BackendAPI interface {
	History(ctx context.Context, limit int) ([]types.HistoryRecord, error)
	Tasks(ctx context.Context, limit int) ([]types.TaskRecord, error)
	SubmitPrompt(ctx context.Context, req client.SubmitPromptRequest) (*client.SubmitPromptResponse, error)
}

// StreamAPI opens per-task live event streams.
type StreamAPI interface {
	TaskEvents(ctx context.Context, taskID string) (<-chan types.TaskEvent, func(), error)
}

// IdentityChecker runs the session identity handshake.
type IdentityChecker interface {
	Check(ctx context.Context) (session.Result, error)
}
