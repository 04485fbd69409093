// package view derives display-ready view models from sync state and exports
// snapshot data to files (CSV, Markdown, JSON)
package view

import (
	"fmt"

	"github.com/ashfall/tdx/internal/models"
	"github.com/ashfall/tdx/internal/sync"
)

const (
	// PlaceholderNA substitutes a field that is absent from the data.
	PlaceholderNA = "N/A"
	// PlaceholderPending substitutes values that have not loaded yet.
	PlaceholderPending = "…"
	// PredictionNotReady is shown when the upstream model has too little
	// data; distinct from any fetch-failure message.
	PredictionNotReady = "prediction not ready"

	readingTimeLayout = "Jan 2 15:04"
)

// ReadingRow is one display-formatted table row.
type ReadingRow struct {
	Time        string
	Temperature string
	Humidity    string
	Battery     string
	Motion      string
}

// HealthIndicator summarizes the anomaly feed. Healthy is only true when a
// snapshot is present and its anomaly set is empty; "no anomalies" is a
// positive signal, not missing data.
type HealthIndicator struct {
	Known   bool
	Healthy bool
	Label   string
}

// ViewModel is everything the presentation layer needs, pre-formatted.
// Stored precision is never mutated; rounding happens only here.
type ViewModel struct {
	Phase      string
	Refreshing bool // a cycle is in flight while stale data stays visible

	AvgTemperature string
	AvgHumidity    string
	AvgBattery     string
	Prediction     string
	Health         HealthIndicator
	Readings       []ReadingRow
	Anomalies      []ReadingRow
	FetchedAt      string

	// Notice is a non-blocking indicator: set when a refresh failed but a
	// previous snapshot remains visible.
	Notice string
	// Blocking is set with ErrorMessage when a cycle failed and there is
	// no snapshot to fall back to.
	Blocking     bool
	ErrorMessage string
}

// Render derives a [ViewModel] from the given state. It is pure and
// side-effect free: calling it any number of times on the same state yields
// identical output, and it never panics on malformed readings.
func Render(state sync.SyncState) ViewModel {
	vm := ViewModel{
		Phase:          state.Phase.String(),
		Refreshing:     state.Phase == sync.PhaseRefreshing,
		AvgTemperature: PlaceholderPending,
		AvgHumidity:    PlaceholderPending,
		AvgBattery:     PlaceholderPending,
		Prediction:     PlaceholderPending,
		Health:         HealthIndicator{Label: PlaceholderPending},
	}

	snap := state.Snapshot

	if state.Phase == sync.PhaseFailed && state.LastError != nil {
		if snap == nil {
			vm.Blocking = true
			vm.ErrorMessage = state.LastError.Message
		} else {
			vm.Notice = fmt.Sprintf("refresh failed (%s), showing last good data", state.LastError.Message)
		}
	}

	if snap == nil {
		return vm
	}

	vm.FetchedAt = snap.FetchedAt.Local().Format("15:04:05")

	if snap.Analytics != nil {
		vm.AvgTemperature = formatCelsius(snap.Analytics.AvgTemperature)
		vm.AvgHumidity = fmt.Sprintf("%.2f %%", snap.Analytics.AvgHumidity)
		vm.AvgBattery = fmt.Sprintf("%.2f V", snap.Analytics.AvgBattery)
		vm.Readings = formatReadings(snap.Analytics.RecentReadings)
	} else {
		vm.AvgTemperature = PlaceholderNA
		vm.AvgHumidity = PlaceholderNA
		vm.AvgBattery = PlaceholderNA
	}

	if snap.Prediction != nil && snap.Prediction.PredictedNextTemperature != nil {
		vm.Prediction = formatCelsius(*snap.Prediction.PredictedNextTemperature)
	} else {
		vm.Prediction = PredictionNotReady
	}

	vm.Anomalies = formatReadings(snap.Anomalies)
	vm.Health = healthIndicator(len(snap.Anomalies))

	return vm
}

func healthIndicator(anomalies int) HealthIndicator {
	if anomalies == 0 {
		return HealthIndicator{Known: true, Healthy: true, Label: "healthy, no anomalies detected"}
	}
	return HealthIndicator{Known: true, Label: fmt.Sprintf("%d anomalies detected", anomalies)}
}

func formatReadings(readings []models.SensorReading) []ReadingRow {
	rows := make([]ReadingRow, len(readings))
	for i, r := range readings {
		rows[i] = ReadingRow{
			Time:        formatReadingTime(r),
			Temperature: formatCelsius(r.Temperature),
			Humidity:    fmt.Sprintf("%.2f %%", r.Humidity),
			Battery:     fmt.Sprintf("%.2f V", r.Battery),
			Motion:      formatMotion(r.Motion),
		}
	}
	return rows
}

// formatReadingTime renders a short local display form, falling back to the
// raw timestamp string when parsing fails.
func formatReadingTime(r models.SensorReading) string {
	t, err := r.ParsedTime()
	if err != nil {
		return r.Time
	}
	return t.Format(readingTimeLayout)
}

func formatCelsius(v float64) string {
	return fmt.Sprintf("%.2f °C", v)
}

func formatMotion(v *float64) string {
	if v == nil {
		return PlaceholderNA
	}
	return fmt.Sprintf("%.2f", *v)
}
