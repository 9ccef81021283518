// Package store persists the console's local state: the backend identity
// triple with its reset boundary, and the UI surface state. Both live in
// a single bbolt database under the data directory.
package store

import (
	"context"

	"overseer/internal/types"
)

type IdentityStore interface {
	Identity(ctx context.Context) (*types.ClientIdentity, error)
	SaveIdentity(ctx context.Context, identity *types.ClientIdentity) error
}

type UIStateStore interface {
	UIState(ctx context.Context) (*types.UIState, error)
	SaveUIState(ctx context.Context, state *types.UIState) error
}

type StateStore interface {
	IdentityStore
	UIStateStore
	Close() error
}
