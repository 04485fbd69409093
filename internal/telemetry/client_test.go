package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ashfall/tdx/internal/shared"
)

func TestClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			c := NewClient("http://example.com", 10, customClient)

			if c.baseURL != "http://example.com" {
				t.Errorf("expected baseURL 'http://example.com', got %s", c.baseURL)
			}
			if c.limit != 10 {
				t.Errorf("expected limit 10, got %d", c.limit)
			}
			if c.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Defaults", func(t *testing.T) {
			c := NewClient("", 0, nil)

			if c.baseURL != "http://localhost:8000" {
				t.Errorf("expected default baseURL 'http://localhost:8000', got %s", c.baseURL)
			}
			if c.limit != defaultReadingLimit {
				t.Errorf("expected default limit %d, got %d", defaultReadingLimit, c.limit)
			}
			if c.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("FetchAnalytics", func(t *testing.T) {
		t.Run("Successful Request", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/analytics" {
					t.Errorf("expected path '/analytics', got %s", r.URL.Path)
				}
				if r.URL.Query().Get("limit") != "25" {
					t.Errorf("expected limit query '25', got %s", r.URL.Query().Get("limit"))
				}

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{
					"avg_temperature": 21.456,
					"avg_humidity": 45.1,
					"avg_battery": 3.7,
					"recent_readings": [
						{"time": "2024-03-01 12:00:00", "Battery": 3.7, "Humidity": 45.1, "Motion": 0, "Temperature": 21.5}
					]
				}`))
			}))
			defer server.Close()

			c := NewClient(server.URL, 25, nil)
			summary, err := c.FetchAnalytics(context.Background())

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if summary.AvgTemperature != 21.456 {
				t.Errorf("expected avg_temperature 21.456, got %f", summary.AvgTemperature)
			}
			if len(summary.RecentReadings) != 1 {
				t.Fatalf("expected 1 reading, got %d", len(summary.RecentReadings))
			}
			if summary.RecentReadings[0].Time != "2024-03-01 12:00:00" {
				t.Errorf("unexpected reading time %q", summary.RecentReadings[0].Time)
			}
		})

		t.Run("Non-Success Status", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			c := NewClient(server.URL, 0, nil)
			_, err := c.FetchAnalytics(context.Background())

			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if statusErr.Code != http.StatusInternalServerError {
				t.Errorf("expected status 500, got %d", statusErr.Code)
			}
			if statusErr.Path != "/analytics" {
				t.Errorf("expected path '/analytics', got %s", statusErr.Path)
			}
		})

		t.Run("Malformed Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			}))
			defer server.Close()

			c := NewClient(server.URL, 0, nil)
			_, err := c.FetchAnalytics(context.Background())

			if !errors.Is(err, shared.ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})
	})

	t.Run("FetchAnomalies", func(t *testing.T) {
		t.Run("Array Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[{"time": "2024-03-01 12:00:00", "Battery": 2.1, "Humidity": 99.0, "Temperature": 55.0}]`))
			}))
			defer server.Close()

			c := NewClient(server.URL, 0, nil)
			anomalies, err := c.FetchAnomalies(context.Background())

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(anomalies) != 1 {
				t.Fatalf("expected 1 anomaly, got %d", len(anomalies))
			}
			if anomalies[0].Temperature != 55.0 {
				t.Errorf("expected temperature 55.0, got %f", anomalies[0].Temperature)
			}
			if anomalies[0].Motion != nil {
				t.Error("expected nil motion for absent field")
			}
		})

		t.Run("Empty Array Is Healthy", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[]`))
			}))
			defer server.Close()

			c := NewClient(server.URL, 0, nil)
			anomalies, err := c.FetchAnomalies(context.Background())

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if anomalies == nil {
				t.Fatal("expected empty slice, got nil")
			}
			if len(anomalies) != 0 {
				t.Errorf("expected 0 anomalies, got %d", len(anomalies))
			}
		})

		t.Run("Non-Array JSON Treated As Empty", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"message": "no anomalies"}`))
			}))
			defer server.Close()

			c := NewClient(server.URL, 0, nil)
			anomalies, err := c.FetchAnomalies(context.Background())

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(anomalies) != 0 {
				t.Errorf("expected 0 anomalies, got %d", len(anomalies))
			}
		})

		t.Run("Invalid JSON Is Malformed", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[{"time":`))
			}))
			defer server.Close()

			c := NewClient(server.URL, 0, nil)
			_, err := c.FetchAnomalies(context.Background())

			if !errors.Is(err, shared.ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})
	})

	t.Run("FetchPrediction", func(t *testing.T) {
		t.Run("With Value", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/predict" {
					t.Errorf("expected path '/predict', got %s", r.URL.Path)
				}
				w.Write([]byte(`{"predicted_next_temperature": 22.7}`))
			}))
			defer server.Close()

			c := NewClient(server.URL, 0, nil)
			prediction, err := c.FetchPrediction(context.Background())

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if prediction.PredictedNextTemperature == nil {
				t.Fatal("expected a predicted temperature")
			}
			if *prediction.PredictedNextTemperature != 22.7 {
				t.Errorf("expected 22.7, got %f", *prediction.PredictedNextTemperature)
			}
		})

		t.Run("Null Means Not Ready", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"predicted_next_temperature": null}`))
			}))
			defer server.Close()

			c := NewClient(server.URL, 0, nil)
			prediction, err := c.FetchPrediction(context.Background())

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if prediction.PredictedNextTemperature != nil {
				t.Error("expected nil prediction for null value")
			}
		})
	})

	t.Run("Health", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/health" {
				t.Errorf("expected path '/health', got %s", r.URL.Path)
			}
			w.Write([]byte(`{"status": "ok"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, 0, nil)
		health, err := c.Health(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if health.Status != "ok" {
			t.Errorf("expected status 'ok', got %s", health.Status)
		}
	})

	t.Run("DebugStatus", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/debug/status" {
				t.Errorf("expected path '/debug/status', got %s", r.URL.Path)
			}
			w.Write([]byte(`{"data_loaded": true, "row_count": 4032, "columns": ["time", "Temperature"], "model_exists": true, "anomaly_model_exists": false}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, 0, nil)
		status, err := c.DebugStatus(context.Background())

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !status.DataLoaded {
			t.Error("expected data_loaded true")
		}
		if status.RowCount != 4032 {
			t.Errorf("expected row_count 4032, got %d", status.RowCount)
		}
		if status.AnomalyModelExists {
			t.Error("expected anomaly_model_exists false")
		}
	})
}
