// Package ui implements an interactive terminal dashboard using bubbletea's Elm architecture.
//
// The dashboard renders the latest [view.ViewModel] and reacts to two inputs:
// store notifications (a refresh cycle committed or failed) and keystrokes.
// It never talks to the telemetry backend directly; all data flows through
// the sync state store, and a manual refresh only asks the scheduler to run
// a cycle.
//
// Stale data stays on screen during background refreshes and after failed
// refreshes, with a non-blocking notice line. A full-screen error with a
// retry hint appears only when a cycle fails before any snapshot exists.
//
// Keyboard navigation uses vim-style bindings (j/k, tab, r, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
