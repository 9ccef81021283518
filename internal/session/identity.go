// Package session decides when locally cached conversation state must be
// discarded because the backend process or the client build changed
// underneath the console.
package session

import (
	"context"
	"time"

	"overseer/internal/logging"
	"overseer/internal/store"
	"overseer/internal/types"
)

// IdentityProber fetches the backend's current process identity.
type IdentityProber interface {
	SystemInfo(ctx context.Context) (*types.SystemInfo, error)
}

// Result describes the outcome of an identity check. When Reset is true
// the caller must discard all locally known entries and adopt the new
// identity's reset boundary.
type Result struct {
	Reset    bool
	Identity types.ClientIdentity
}

type IdentityManager struct {
	store   store.IdentityStore
	prober  IdentityProber
	buildID string
	log     logging.Logger
	now     func() time.Time
	newID   func() string
}

func NewIdentityManager(s store.IdentityStore, prober IdentityProber, buildID string, log logging.Logger) *IdentityManager {
	if log == nil {
		log = logging.Nop()
	}
	return &IdentityManager{
		store:   s,
		prober:  prober,
		buildID: buildID,
		log:     log,
		now:     time.Now,
		newID:   logging.NewSessionID,
	}
}

// Check compares the stored (session, boot, build) triple against the
// backend's current boot id and the client's own build id. A mismatch or
// a missing stored identity yields a reset carrying a fresh session id
// and now() as the reset boundary; the new triple is persisted before
// returning. A failed probe is treated as no signal: identity is assumed
// unchanged, never reset on silence.
func (m *IdentityManager) Check(ctx context.Context) (Result, error) {
	stored, err := m.store.Identity(ctx)
	if err != nil {
		return Result{}, err
	}

	info, err := m.prober.SystemInfo(ctx)
	if err != nil || info == nil || info.BootID == "" {
		if err != nil {
			m.log.Warn("identity probe failed; assuming backend unchanged", logging.F("error", err))
		}
		if stored == nil {
			return Result{}, nil
		}
		return Result{Identity: *stored}, nil
	}

	if stored != nil && stored.SessionID != "" &&
		stored.BackendBootID == info.BootID &&
		stored.ClientBuildID == m.buildID {
		return Result{Identity: *stored}, nil
	}

	boundary := m.now().UTC()
	next := types.ClientIdentity{
		SessionID:     m.newID(),
		BackendBootID: info.BootID,
		ClientBuildID: m.buildID,
		ResetBoundary: &boundary,
	}
	if err := m.store.SaveIdentity(ctx, &next); err != nil {
		return Result{}, err
	}
	m.log.Info("session reset",
		logging.F("session_id", next.SessionID),
		logging.F("boot_id", info.BootID),
		logging.F("boundary", boundary.Format(time.RFC3339)))
	return Result{Reset: true, Identity: next}, nil
}
