package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ashfall/tdx/internal/sync"
)

var (
	_ tea.Msg = stateChangedMsg{}
	_ tea.Msg = refreshRejectedMsg{}
)

// stateChangedMsg carries a fresh snapshot of sync state into the Elm loop.
// Notifications are coalesced, so one message may cover several store writes.
type stateChangedMsg struct {
	state sync.SyncState
}

// refreshRejectedMsg reports a manual trigger the scheduler refused.
type refreshRejectedMsg struct {
	err error
}
