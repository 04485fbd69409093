package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ashfall/tdx/internal/shared"
	"github.com/ashfall/tdx/internal/sync"
	"github.com/ashfall/tdx/internal/view"
)

// Pane identifies which list has focus on the dashboard.
type Pane int

const (
	ReadingsPane Pane = iota
	AnomaliesPane
)

// Refresher triggers an immediate refresh cycle.
type Refresher interface {
	TriggerNow() error
}

// Model represents the dashboard application state.
type Model struct {
	ctx       context.Context
	store     *sync.Store
	refresher Refresher
	updates   <-chan struct{}

	vm     view.ViewModel
	pane   Pane
	width  int
	height int

	readingList list.Model
	anomalyList list.Model
	listsReady  bool

	notice string
	help   help.Model
	keys   keyMap
}

// NewModel creates a dashboard model bound to the given store and refresher.
func NewModel(ctx context.Context, store *sync.Store, refresher Refresher) *Model {
	return &Model{
		ctx:       ctx,
		store:     store,
		refresher: refresher,
		updates:   store.Subscribe(),
		vm:        view.Render(store.State()),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init starts listening for store notifications.
func (m *Model) Init() tea.Cmd {
	return m.waitForUpdate()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listsReady {
			m.readingList.SetSize(msg.Width-4, m.listHeight())
			m.anomalyList.SetSize(msg.Width-4, m.listHeight())
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case stateChangedMsg:
		m.vm = view.Render(msg.state)
		m.notice = ""
		m.syncLists()
		return m, m.waitForUpdate()

	case refreshRejectedMsg:
		if errors.Is(msg.err, shared.ErrCycleInFlight) {
			return m, nil
		}
		m.notice = msg.err.Error()
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the dashboard or, when a cycle failed with nothing to show,
// a full-screen error with a retry hint.
func (m *Model) View() string {
	if m.vm.Blocking {
		body := styles.err.Render(fmt.Sprintf("Error: %s", m.vm.ErrorMessage))
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.retry, m.keys.quit})
		return fmt.Sprintf("%s\n\n%s", body, helpView)
	}
	return m.renderDashboard()
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		// Ignored while a cycle is in flight; the store refuses
		// overlapping cycles anyway.
		if m.vm.Refreshing || m.vm.Phase == "loading" {
			return m, nil
		}
		return m, m.triggerRefresh()
	case "tab":
		if m.pane == ReadingsPane {
			m.pane = AnomaliesPane
		} else {
			m.pane = ReadingsPane
		}
		return m, nil
	}
	return m.updateLists(msg)
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.listsReady {
		return m, nil
	}
	var cmd tea.Cmd
	switch m.pane {
	case ReadingsPane:
		m.readingList, cmd = m.readingList.Update(msg)
	case AnomaliesPane:
		m.anomalyList, cmd = m.anomalyList.Update(msg)
	}
	return m, cmd
}

// syncLists rebuilds the list contents from the current view model while
// preserving cursor position where possible.
func (m *Model) syncLists() {
	if !m.listsReady {
		m.readingList = list.New(readingItems(m.vm.Readings), list.NewDefaultDelegate(), 0, 0)
		m.readingList.Title = "Recent Readings"
		m.readingList.SetShowHelp(false)
		m.anomalyList = list.New(anomalyItems(m.vm.Anomalies), list.NewDefaultDelegate(), 0, 0)
		m.anomalyList.Title = "Anomalies"
		m.anomalyList.SetShowHelp(false)
		m.listsReady = true
	} else {
		m.readingList.SetItems(readingItems(m.vm.Readings))
		m.anomalyList.SetItems(anomalyItems(m.vm.Anomalies))
	}
	m.readingList.SetSize(m.width-4, m.listHeight())
	m.anomalyList.SetSize(m.width-4, m.listHeight())
}

func (m *Model) listHeight() int {
	h := m.height - 12
	if h < 5 {
		h = 5
	}
	return h
}

func (m *Model) triggerRefresh() tea.Cmd {
	return func() tea.Msg {
		if err := m.refresher.TriggerNow(); err != nil {
			return refreshRejectedMsg{err: err}
		}
		return nil
	}
}

// waitForUpdate blocks on the store's notification channel and converts the
// wakeup into a message carrying the latest state.
func (m *Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return tea.Quit()
		case <-m.updates:
			return stateChangedMsg{state: m.store.State()}
		}
	}
}

func (m *Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Sensor Telemetry"))
	b.WriteString("\n")

	status := m.vm.Phase
	if m.vm.Refreshing {
		status = "refreshing…"
	}
	b.WriteString(styles.help.Render(fmt.Sprintf("status: %s", status)))
	if m.vm.FetchedAt != "" {
		b.WriteString(styles.help.Render(fmt.Sprintf("  last update: %s", m.vm.FetchedAt)))
	}
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf(
		"Avg Temperature: %s    Avg Humidity: %s    Avg Battery: %s\n",
		m.vm.AvgTemperature, m.vm.AvgHumidity, m.vm.AvgBattery,
	))
	b.WriteString(fmt.Sprintf("Next Temperature: %s\n", m.vm.Prediction))

	if m.vm.Health.Known {
		if m.vm.Health.Healthy {
			b.WriteString(styles.ok.Render(m.vm.Health.Label))
		} else {
			b.WriteString(styles.warn.Render(m.vm.Health.Label))
		}
	} else {
		b.WriteString(m.vm.Health.Label)
	}
	b.WriteString("\n")

	if m.vm.Notice != "" {
		b.WriteString(styles.warn.Render(m.vm.Notice))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(styles.warn.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.listsReady {
		switch m.pane {
		case ReadingsPane:
			b.WriteString(m.readingList.View())
		case AnomaliesPane:
			b.WriteString(m.anomalyList.View())
		}
		b.WriteString("\n\n")
	}

	helpKeys := []key.Binding{m.keys.tab, m.keys.refresh, m.keys.quit}
	b.WriteString(m.help.ShortHelpView(helpKeys))

	return b.String()
}
