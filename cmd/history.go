package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/ashfall/tdx/internal/models"
	"github.com/ashfall/tdx/internal/repositories"
)

// HistoryList prints recent cycles from the local journal.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewCycleRepository(db)
	records, err := repo.List(int(limit))
	if err != nil {
		return fmt.Errorf("failed to list cycles: %w", err)
	}

	if useJSON {
		return r.writeJSON(records, true)
	}

	if len(records) == 0 {
		r.writePlain("No cycles recorded yet.\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Refresh Cycles (%d)", len(records)))
	for _, rec := range records {
		line := fmt.Sprintf(
			"%s  %-9s %-9s %4dms",
			rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
			rec.Trigger, rec.Outcome, rec.Duration.Milliseconds(),
		)
		if rec.Outcome == models.OutcomeCommitted {
			line += fmt.Sprintf("  readings=%d anomalies=%d", rec.ReadingCount, rec.AnomalyCount)
		}
		if rec.ErrorCategory != "" {
			line += fmt.Sprintf("  [%s] %s", rec.ErrorCategory, rec.ErrorMessage)
		}
		r.writePlain("%s\n", line)
	}

	return nil
}

// HistoryPrune deletes journal entries older than the given number of days.
func (r *Runner) HistoryPrune(ctx context.Context, cmd *cli.Command) error {
	days := cmd.Int("days")
	if days <= 0 {
		return fmt.Errorf("days must be positive, got %d", days)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	cutoff := time.Now().AddDate(0, 0, -int(days))
	repo := repositories.NewCycleRepository(db)

	pruned, err := repo.PruneBefore(cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune cycles: %w", err)
	}

	r.logger.Info("pruned cycle journal", "removed", pruned, "cutoff", cutoff)
	r.writePlain("✓ Removed %d cycles older than %s\n", pruned, cutoff.Local().Format("2006-01-02"))
	return nil
}
