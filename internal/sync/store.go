package sync

import (
	gosync "sync"

	"github.com/ashfall/tdx/internal/models"
	"github.com/ashfall/tdx/internal/shared"
)

// SyncState is the observable state of the refresh machine. Snapshot and
// LastError are nil until a cycle has produced them.
type SyncState struct {
	Phase     Phase
	Snapshot  *models.Snapshot
	LastError *ErrorInfo
}

// Store holds the current [SyncState] and enforces the cycle write protocol:
// Begin marks a cycle in flight (at most one), and exactly one Commit or Fail
// follows per cycle. Snapshots are replaced atomically, never mutated in
// place; a failed cycle keeps the previous snapshot readable.
//
// All mutation goes through the store's methods; readers get value copies.
type Store struct {
	mu    gosync.Mutex
	state SyncState
	epoch uint64
	subs  []chan struct{}
}

// NewStore creates a store in [PhaseIdle] with no snapshot.
func NewStore() *Store {
	return &Store{}
}

// State returns a copy of the current state.
func (s *Store) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe returns a channel that receives a signal after every state
// change. The channel has a one-slot buffer and signals are coalesced, so a
// slow reader sees at least one notification for any burst of writes.
func (s *Store) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan struct{}, 1)
	s.subs = append(s.subs, ch)
	return ch
}

// Begin marks a cycle in flight and returns the epoch the cycle must present
// when writing its outcome. Returns [shared.ErrCycleInFlight] if another
// cycle is already running; the caller drops the trigger rather than queue it.
func (s *Store) Begin() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase.InFlight() {
		return 0, shared.ErrCycleInFlight
	}

	if s.state.Snapshot == nil {
		s.state.Phase = PhaseLoading
	} else {
		s.state.Phase = PhaseRefreshing
	}

	s.notifyLocked()
	return s.epoch, nil
}

// Commit atomically installs the snapshot of a successful cycle and clears
// the last error. Returns false when the epoch is stale (the store was
// invalidated after the cycle began); the result is discarded and the state
// is untouched.
func (s *Store) Commit(epoch uint64, snapshot *models.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return false
	}

	s.state = SyncState{
		Phase:    PhaseReady,
		Snapshot: snapshot,
	}

	s.notifyLocked()
	return true
}

// Fail records a classified cycle failure. The previous snapshot, if any, is
// retained so stale data stays visible. Returns false for a stale epoch.
func (s *Store) Fail(epoch uint64, info ErrorInfo) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return false
	}

	s.state.Phase = PhaseFailed
	s.state.LastError = &info

	s.notifyLocked()
	return true
}

// Invalidate advances the epoch so cycles that resolve after teardown are
// discarded instead of written. An in-flight marker is rolled back to the
// settled phase it came from.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++

	switch s.state.Phase {
	case PhaseLoading:
		s.state.Phase = PhaseIdle
	case PhaseRefreshing:
		s.state.Phase = PhaseReady
	}

	s.notifyLocked()
}

// notifyLocked signals every subscriber without blocking; callers hold mu.
func (s *Store) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
