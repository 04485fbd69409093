// Package models defines the data model for the telemetry dashboard client.
//
// The package contains two categories of types:
//
// 1. Wire types: shapes returned by the sensor analytics backend, read-only here
//   - [SensorReading] : a single sensor sample (also the anomaly row shape)
//   - [AnalyticsSummary] : upstream-computed averages plus recent readings
//   - [PredictionResult] : short-term temperature prediction, possibly absent
//   - [HealthStatus], [DebugStatus] : service liveness and data status
//
// 2. Local types owned by this client:
//   - [Snapshot] : the atomic bundle of one successful refresh cycle
//   - [CycleRecord] : a journal entry describing one cycle's outcome
//
// Averages and anomaly membership are computed upstream; this client never
// recomputes them.
package models
