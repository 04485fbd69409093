// Package telemetry implements HTTP clients for the sensor analytics backend.
//
// [Client] provides typed access to the three data feeds (/analytics,
// /anomalies, /predict) plus the liveness endpoints (/health, /debug/status).
// [APIService] provides raw passthrough access for the `api` commands.
//
// All requests are read-only GETs against a configurable base URL. Failures
// surface as wrapped errors that internal/sync's classifier maps to
// user-facing categories; [StatusError] carries non-success HTTP statuses.
package telemetry
