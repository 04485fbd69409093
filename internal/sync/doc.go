// Package sync implements the refresh cycle state machine for the dashboard.
//
// The core abstraction is a cycle: one complete attempt to refresh all three
// data feeds and commit or reject the result. [Scheduler] is the only source
// of cycles, firing one immediately on start and then at a fixed period, with
// a manual out-of-band trigger. [Coordinator] runs a cycle by issuing the
// three feed queries concurrently and applying an all-or-nothing policy: a
// snapshot is committed to the [Store] only when every query succeeds, and a
// single failure rejects the whole cycle while retaining the previous
// snapshot. [Classifier] labels request failures with deterministic,
// user-facing categories.
//
// The Store is the single mutable shared resource. It accepts exactly one
// write per cycle, serialized by the one-cycle-in-flight guard, and notifies
// subscribers (the TUI) on every change. An epoch counter invalidated at
// scheduler teardown keeps late-resolving cycles from writing into a
// stopped store.
package sync
