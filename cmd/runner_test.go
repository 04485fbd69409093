package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/ashfall/tdx/internal/shared"
	"github.com/ashfall/tdx/internal/telemetry"
	tu "github.com/ashfall/tdx/internal/testing"
)

// fakeBackend serves the backend's read endpoints with fixed payloads.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/analytics", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"avg_temperature": 21.456,
			"avg_humidity": 45.1,
			"avg_battery": 3.7,
			"recent_readings": [{"time": "2024-03-01 12:00:00", "Battery": 3.7, "Humidity": 45.1, "Motion": 0, "Temperature": 21.5}]
		}`))
	})
	mux.HandleFunc("/anomalies", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"predicted_next_temperature": 22.7}`))
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("/debug/status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data_loaded": true, "row_count": 100, "columns": ["time"], "model_exists": true, "anomaly_model_exists": true}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// testRunner builds a runner against the fake backend, capturing output.
func testRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()
	server := fakeBackend(t)
	output := &bytes.Buffer{}

	config := shared.DefaultConfig()
	config.Telemetry.BaseURL = server.URL
	config.Database.Path = "/nonexistent/tdx.db"

	runner := NewRunner(RunnerOpts{
		Config: config,
		Client: telemetry.NewClient(server.URL, 50, nil),
		API:    telemetry.NewAPIService(server.URL, nil),
		Output: output,
	})
	return runner, output
}

// runCommand executes one of the runner's registered commands end to end.
func runCommand(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "tdx", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"tdx"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			client := telemetry.NewClient("http://example.com", 10, nil)
			api := telemetry.NewAPIService("http://example.com", nil)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Client:     client,
				API:        api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.client != client {
				t.Error("expected client to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
		})

		t.Run("with nil opts uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
			if runner.client == nil {
				t.Error("expected a client built from config")
			}
			if runner.api == nil {
				t.Error("expected an api service built from config")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("compact", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]int{"a": 1}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "{\"a\":1}\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("pretty", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]int{"a": 1}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "\n  \"a\": 1") {
				t.Errorf("expected indented output, got %q", output.String())
			}
		})

		t.Run("write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writeJSON(map[string]int{"a": 1}, false); err == nil {
				t.Error("expected error from failing writer")
			}
		})

		t.Run("unmarshalable value", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			if err := runner.writeJSON(make(chan int), false); err == nil {
				t.Error("expected marshal error")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("value: %d\n", 7); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "value: 7\n" {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}

func TestFetchCommand(t *testing.T) {
	t.Run("Rendered Output", func(t *testing.T) {
		runner, output := testRunner(t)

		if err := runCommand(t, runner, "fetch"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got := output.String()
		if !strings.Contains(got, "21.46 °C") {
			t.Errorf("expected rounded temperature, got %q", got)
		}
		if !strings.Contains(got, "healthy, no anomalies detected") {
			t.Errorf("expected healthy indicator, got %q", got)
		}
		if !strings.Contains(got, "22.70 °C") {
			t.Errorf("expected prediction, got %q", got)
		}
	})

	t.Run("JSON Output", func(t *testing.T) {
		runner, output := testRunner(t)

		if err := runCommand(t, runner, "fetch", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), `"avg_temperature": 21.456`) {
			t.Errorf("expected raw precision in JSON, got %q", output.String())
		}
	})

	t.Run("Backend Down", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Client: telemetry.NewClient("http://127.0.0.1:1", 0, nil),
			Output: output,
		})

		if err := runCommand(t, runner, "fetch"); err == nil {
			t.Error("expected error when the backend is unreachable")
		}
	})
}

func TestStatusCommand(t *testing.T) {
	runner, output := testRunner(t)

	if err := runCommand(t, runner, "status"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got := output.String()
	if !strings.Contains(got, "Health:        ok") {
		t.Errorf("expected health line, got %q", got)
	}
	if !strings.Contains(got, "100 rows") {
		t.Errorf("expected row count, got %q", got)
	}
}

func TestAPICommands(t *testing.T) {
	t.Run("Get", func(t *testing.T) {
		runner, output := testRunner(t)

		if err := runCommand(t, runner, "api", "get", "/health"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), `"status":"ok"`) {
			t.Errorf("expected raw JSON, got %q", output.String())
		}
	})

	t.Run("Debug", func(t *testing.T) {
		runner, output := testRunner(t)

		if err := runCommand(t, runner, "api", "debug"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), `"data_loaded": true`) {
			t.Errorf("expected debug payload, got %q", output.String())
		}
	})

	t.Run("Dump Collects Endpoints", func(t *testing.T) {
		runner, output := testRunner(t)

		if err := runCommand(t, runner, "api", "dump"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		got := output.String()
		if !strings.Contains(got, `"analytics"`) {
			t.Errorf("expected analytics section, got %q", got)
		}
		// The fake backend has no root handler, so the dump records the
		// failure instead of aborting.
		if !strings.Contains(got, `"errors"`) {
			t.Errorf("expected errors section, got %q", got)
		}
	})
}

func TestExportCommand(t *testing.T) {
	runner, output := testRunner(t)
	base := t.TempDir() + "/snap"

	if err := runCommand(t, runner, "export", "--format", "csv", "--output", base); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	tu.AssertFileExists(t, base+"_readings.csv")
	tu.AssertFileExists(t, base+"_anomalies.csv")
	if !strings.Contains(output.String(), "Wrote") {
		t.Errorf("expected written file report, got %q", output.String())
	}
}
