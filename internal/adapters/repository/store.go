// Package repository holds per-session dashboard state.
package repository

import (
	"context"
	"time"

	"github.com/okian/chainaudit/internal/domain/types"
)

// Session is one visitor's dashboard state.
type Session struct {
	ID        string
	State     types.State
	CreatedAt time.Time
	LastSeen  time.Time
}

// Store provides read/write access to sessions. Returned sessions are
// copies; mutating them does not change the store.
type Store interface {
	// Create starts a session with state and returns it.
	Create(ctx context.Context, state types.State) (Session, error)

	// Get returns the session and refreshes its idle timer.
	// Returns ErrNotFound if the session is unknown or expired.
	Get(ctx context.Context, id string) (Session, error)

	// Update applies fn to the session state under the store lock.
	Update(ctx context.Context, id string, fn func(*types.State)) (Session, error)

	// Delete removes a session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, id string) error

	// Count returns the number of live sessions.
	Count(ctx context.Context) int

	// Sweep removes sessions idle since before now minus the TTL and
	// returns how many were removed.
	Sweep(ctx context.Context, now time.Time) int
}
