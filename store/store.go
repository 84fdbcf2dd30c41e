// Package store abstracts persistence of the single shared game document.
// Implementations follow one contract: Save after a Load that reported
// ErrNotFound must use the create path; every later Save uses the update
// path. Stores do not merge concurrent writes — the last save wins.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/anyoshi/bingo-live/game"
)

// ErrNotFound means the game document does not exist yet. Not an error
// condition for callers: it triggers first-time initialization.
var ErrNotFound = errors.New("game state not found")

// PersistenceError wraps a failed load or save. The operation is considered
// failed; no retry is attempted by the store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// PermissionError means the backing transport denied the live-update
// subscription. Fatal to the session's ability to receive changes, so
// callers surface it prominently.
type PermissionError struct {
	Err error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("subscription denied: %v", e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// Store persists the shared GameState document.
type Store interface {
	// Load returns the current document, or ErrNotFound when no game has
	// been created yet.
	Load(ctx context.Context) (*game.State, error)

	// Save persists the full document. initial selects the create path and
	// must be true exactly when the preceding Load reported ErrNotFound.
	Save(ctx context.Context, s *game.State, initial bool) error
}

// Watcher is the push-based variant of the contract: subscribers are
// invoked on every committed change, including this process's own writes.
// Write-then-notify is the only update path. Stores without live updates
// simply do not implement Watcher; their callers re-render after each
// local mutation.
type Watcher interface {
	// Subscribe registers a long-lived listener. onChange receives a copy
	// of the committed document; onError receives transport failures. The
	// returned cancel func removes the listener and is safe to call more
	// than once.
	Subscribe(onChange func(*game.State), onError func(error)) (cancel func(), err error)
}
