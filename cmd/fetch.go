package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/ashfall/tdx/internal/models"
	"github.com/ashfall/tdx/internal/sync"
	"github.com/ashfall/tdx/internal/view"
)

// Fetch runs a single refresh cycle against the backend and prints the
// committed snapshot, either rendered for reading or as raw JSON.
func (r *Runner) Fetch(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	journal, closeJournal, err := r.openJournal()
	if err != nil {
		r.logger.Warn("cycle journal unavailable", "error", err)
	}
	defer closeJournal()

	store := sync.NewStore()
	coordinator := sync.NewCoordinator(sync.CoordinatorOpts{
		Client:  r.client,
		Store:   store,
		Journal: journal,
		Timeout: r.config.Telemetry.RequestTimeout(),
		Logger:  r.logger,
	})

	if err := coordinator.Run(ctx, models.TriggerManual); err != nil {
		return fmt.Errorf("refresh cycle failed: %w", err)
	}

	state := store.State()
	if useJSON {
		return r.writeJSON(state.Snapshot, pretty)
	}

	r.renderViewModel(view.Render(state))
	return nil
}

// Status queries /health and /debug/status and reports backend readiness.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")

	health, err := r.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	debug, err := r.client.DebugStatus(ctx)
	if err != nil {
		return fmt.Errorf("debug status failed: %w", err)
	}

	if useJSON {
		return r.writeJSON(map[string]any{"health": health, "debug": debug}, true)
	}

	r.writePlainHeader("Backend Status")
	r.writePlain("Health:        %s\n", health.Status)
	r.writePlain("Data loaded:   %v (%d rows)\n", debug.DataLoaded, debug.RowCount)
	r.writePlain("Models ready:  prediction=%v anomaly=%v\n", debug.ModelExists, debug.AnomalyModelExists)
	if len(debug.Columns) > 0 {
		r.writePlain("Columns:       %v\n", debug.Columns)
	}
	return nil
}

// Export fetches a fresh snapshot and writes it to files in the requested format.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	output := cmd.String("output")

	store := sync.NewStore()
	coordinator := sync.NewCoordinator(sync.CoordinatorOpts{
		Client:  r.client,
		Store:   store,
		Timeout: r.config.Telemetry.RequestTimeout(),
		Logger:  r.logger,
	})

	r.logger.Info("fetching snapshot for export", "format", format)
	if err := coordinator.Run(ctx, models.TriggerManual); err != nil {
		return fmt.Errorf("refresh cycle failed: %w", err)
	}

	result, err := view.WriteSnapshotExport(store.State().Snapshot, format, output)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	for _, file := range result.Files {
		r.writePlain("✓ Wrote %s\n", file)
	}
	return nil
}

// renderViewModel prints a view model as a plain-text snapshot report.
func (r *Runner) renderViewModel(vm view.ViewModel) {
	r.writePlainHeader("Sensor Telemetry")

	if vm.Blocking {
		r.writePlain("Error: %s\n", vm.ErrorMessage)
		return
	}
	if vm.Notice != "" {
		r.writePlain("! %s\n\n", vm.Notice)
	}

	r.writePlain("Avg Temperature: %s\n", vm.AvgTemperature)
	r.writePlain("Avg Humidity:    %s\n", vm.AvgHumidity)
	r.writePlain("Avg Battery:     %s\n", vm.AvgBattery)
	r.writePlain("Next Temp:       %s\n", vm.Prediction)
	r.writePlain("Health:          %s\n", vm.Health.Label)
	if vm.FetchedAt != "" {
		r.writePlain("Fetched at:      %s\n", vm.FetchedAt)
	}

	if len(vm.Readings) > 0 {
		r.writePlainln("Recent readings (%d):", len(vm.Readings))
		for _, row := range vm.Readings {
			r.writePlain("  %s  %s  %s  %s  motion %s\n", row.Time, row.Temperature, row.Humidity, row.Battery, row.Motion)
		}
	}

	if len(vm.Anomalies) > 0 {
		r.writePlainln("Anomalies (%d):", len(vm.Anomalies))
		for _, row := range vm.Anomalies {
			r.writePlain("  %s  %s  %s  %s  motion %s\n", row.Time, row.Temperature, row.Humidity, row.Battery, row.Motion)
		}
	}
}
