package models

import (
	"fmt"
	"time"
)

// timeLayouts are the timestamp formats the backend is known to emit.
// Readings come out of a pandas frame, so the common case is the second form.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
}

// SensorReading is a single sample from the remote service. Field names follow
// the backend's JSON keys. The raw time string is kept as-is so display code
// can fall back to it when parsing fails.
type SensorReading struct {
	Time        string   `json:"time"`
	Battery     float64  `json:"Battery"`
	Humidity    float64  `json:"Humidity"`
	Motion      *float64 `json:"Motion"`
	Temperature float64  `json:"Temperature"`
}

// ParsedTime parses the reading's raw timestamp, trying each known backend
// layout in order.
func (r SensorReading) ParsedTime() (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, r.Time); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", r.Time)
}

// AnomalyRecord has the same shape as a reading; rows the upstream model
// flagged as anomalous. An empty set means the system is healthy.
type AnomalyRecord = SensorReading

// AnalyticsSummary is the /analytics response. The averages are computed
// upstream and treated as opaque here.
type AnalyticsSummary struct {
	AvgTemperature float64         `json:"avg_temperature"`
	AvgHumidity    float64         `json:"avg_humidity"`
	AvgBattery     float64         `json:"avg_battery"`
	RecentReadings []SensorReading `json:"recent_readings"`
}

// PredictionResult is the /predict response. A nil temperature means the
// upstream model has insufficient data, which is distinct from a fetch failure.
type PredictionResult struct {
	PredictedNextTemperature *float64 `json:"predicted_next_temperature"`
}

// HealthStatus is the /health response.
type HealthStatus struct {
	Status string `json:"status"`
}

// DebugStatus is the /debug/status response describing backend data state.
type DebugStatus struct {
	DataLoaded         bool     `json:"data_loaded"`
	RowCount           int      `json:"row_count"`
	Columns            []string `json:"columns"`
	ModelExists        bool     `json:"model_exists"`
	AnomalyModelExists bool     `json:"anomaly_model_exists"`
}

// Snapshot bundles the results of one fully successful refresh cycle.
// It is committed to the state store in one step and never partially mutated;
// a failed cycle leaves the previous snapshot untouched.
type Snapshot struct {
	CycleID    string            `json:"cycle_id"`
	Analytics  *AnalyticsSummary `json:"analytics"`
	Anomalies  []AnomalyRecord   `json:"anomalies"`
	Prediction *PredictionResult `json:"prediction"`
	FetchedAt  time.Time         `json:"fetched_at"`
}

// NewSnapshot builds a snapshot from the three feed results. A nil anomalies
// slice is normalized to an empty one: "no anomalies" is a positive state,
// not missing data.
func NewSnapshot(cycleID string, analytics *AnalyticsSummary, anomalies []AnomalyRecord, prediction *PredictionResult, fetchedAt time.Time) *Snapshot {
	if anomalies == nil {
		anomalies = []AnomalyRecord{}
	}
	return &Snapshot{
		CycleID:    cycleID,
		Analytics:  analytics,
		Anomalies:  anomalies,
		Prediction: prediction,
		FetchedAt:  fetchedAt,
	}
}

// CycleOutcome enumerates how a refresh cycle ended.
type CycleOutcome string

const (
	OutcomeCommitted CycleOutcome = "committed"
	OutcomeFailed    CycleOutcome = "failed"
	OutcomeDiscarded CycleOutcome = "discarded" // resolved after scheduler teardown
)

// CycleTrigger enumerates what started a refresh cycle.
type CycleTrigger string

const (
	TriggerScheduled CycleTrigger = "scheduled"
	TriggerManual    CycleTrigger = "manual"
)

// CycleRecord is a journal entry describing one refresh cycle. Records are
// diagnostics only: the sync state machine never reads them back.
type CycleRecord struct {
	ID            string
	Sequence      int
	Trigger       CycleTrigger
	Outcome       CycleOutcome
	ErrorCategory string
	ErrorMessage  string
	ReadingCount  int
	AnomalyCount  int
	Duration      time.Duration
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Validate checks that the record is complete enough to persist.
func (c *CycleRecord) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("cycle record missing id")
	}
	if c.Trigger == "" {
		return fmt.Errorf("cycle record missing trigger")
	}
	if c.Outcome == "" {
		return fmt.Errorf("cycle record missing outcome")
	}
	if c.StartedAt.IsZero() || c.FinishedAt.IsZero() {
		return fmt.Errorf("cycle record missing timestamps")
	}
	return nil
}

// Repository defines the interface for journal data access.
type Repository[T any] interface {
	Create(record T) error       // Create inserts a new record
	Get(id string) (T, error)    // Get retrieves a record by its ID
	List(limit int) ([]T, error) // List retrieves the most recent records
}
