package sync

// Phase is the lifecycle state of the synchronization state machine.
type Phase int

const (
	// PhaseIdle is the initial state: no data yet, no cycle run.
	PhaseIdle Phase = iota
	// PhaseLoading is the first cycle in flight, nothing to show yet.
	PhaseLoading
	// PhaseRefreshing is a later cycle in flight; the stale snapshot stays
	// readable while it runs.
	PhaseRefreshing
	// PhaseReady means a snapshot is present and no cycle is active.
	PhaseReady
	// PhaseFailed means the last cycle failed. A prior snapshot, if any,
	// is retained; failed-with-snapshot and failed-without are distinct
	// observable conditions.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseRefreshing:
		return "refreshing"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return ""
	}
}

// InFlight reports whether a cycle is currently running in this phase.
func (p Phase) InFlight() bool {
	return p == PhaseLoading || p == PhaseRefreshing
}
