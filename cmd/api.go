package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"github.com/ashfall/tdx/internal/shared"
)

// APIGet makes a direct GET request to the backend
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	useJSON := cmd.Bool("json")

	if path == "" {
		return fmt.Errorf("%w: path argument is required", shared.ErrMissingArgument)
	}

	r.logger.Info("GET request", "path", path)

	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if useJSON {
		if resp.IsJSON {
			return r.writeJSON(resp.JSONData, false)
		}
		r.output.Write(resp.Body)
		r.output.Write([]byte("\n"))
		return nil
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, true)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// APIDebug prints the backend's /debug/status payload.
func (r *Runner) APIDebug(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("GET request", "path", "/debug/status")

	resp, err := r.api.Get(ctx, "/debug/status")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, true)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// APIDump fetches every backend endpoint and collects the responses into one
// document. Requests are rate limited so the dump never hammers the backend.
func (r *Runner) APIDump(ctx context.Context, cmd *cli.Command) error {
	pretty := cmd.Bool("pretty")
	save := cmd.Bool("save")

	r.logger.Info("dumping backend state")
	r.writePlain("Fetching backend state...\n\n")

	type DumpData struct {
		Root      any   `json:"root,omitempty"`
		Health    any   `json:"health,omitempty"`
		Debug     any   `json:"debug,omitempty"`
		Analytics any   `json:"analytics,omitempty"`
		Anomalies any   `json:"anomalies,omitempty"`
		Predict   any   `json:"predict,omitempty"`
		Errors    []any `json:"errors,omitempty"`
	}

	dump := DumpData{Errors: []any{}}

	endpoints := []struct {
		label string
		path  string
		slot  *any
	}{
		{"service info", "/", &dump.Root},
		{"health status", "/health", &dump.Health},
		{"debug status", "/debug/status", &dump.Debug},
		{"analytics", "/analytics", &dump.Analytics},
		{"anomalies", "/anomalies", &dump.Anomalies},
		{"prediction", "/predict", &dump.Predict},
	}

	limiter := rate.NewLimiter(rate.Every(200*time.Millisecond), 1)

	for _, ep := range endpoints {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("dump cancelled: %w", err)
		}

		r.writePlain("• Fetching %s...\n", ep.label)
		resp, err := r.api.Get(ctx, ep.path)
		if err != nil {
			dump.Errors = append(dump.Errors, map[string]string{"endpoint": ep.path, "error": err.Error()})
			r.logger.Warn("failed to fetch endpoint", "path", ep.path, "error", err)
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			dump.Errors = append(dump.Errors, map[string]string{"endpoint": ep.path, "error": fmt.Sprintf("status %d", resp.StatusCode)})
			r.logger.Warn("endpoint returned error status", "path", ep.path, "status", resp.StatusCode)
			continue
		}
		*ep.slot = resp.JSONData
	}

	r.writePlain("\n✓ Dump complete\n\n")

	if save {
		saveFile := "api_dump.json"
		data, err := shared.MarshalJSON(dump, true)
		if err != nil {
			return fmt.Errorf("failed to marshal dump: %w", err)
		}
		if err := os.WriteFile(saveFile, data, 0644); err != nil {
			r.logger.Warn("failed to save dump", "error", err)
		} else {
			r.logger.Info("dump saved", "file", saveFile)
			r.writePlain("✓ Dump saved to %s\n\n", saveFile)
		}
	}

	return r.writeJSON(dump, pretty)
}

// apiCommand handles direct calls to the backend's HTTP endpoints
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to the telemetry backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the backend, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:   "debug",
				Usage:  "Show backend data and model state (/debug/status)",
				Action: r.APIDebug,
			},
			{
				Name:  "dump",
				Usage: "Full backend state dump (all read endpoints)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Save dump to api_dump.json",
						Value: false,
					},
				},
				Action: r.APIDump,
			},
		},
	}
}
