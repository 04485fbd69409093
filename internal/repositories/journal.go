package repositories

import (
	"fmt"

	"github.com/ashfall/tdx/internal/models"
)

// JournalAdapter implements sync.Journal using a CycleRepository.
//
// Recording is best effort from the coordinator's point of view: callers log
// and continue when a write fails, so a broken journal never fails a cycle.
type JournalAdapter struct {
	repo *CycleRepository
}

// NewJournalAdapter creates a new JournalAdapter with the given repository
func NewJournalAdapter(repo *CycleRepository) *JournalAdapter {
	return &JournalAdapter{repo: repo}
}

// Record persists one cycle outcome.
func (a *JournalAdapter) Record(record *models.CycleRecord) error {
	if err := a.repo.Create(record); err != nil {
		return fmt.Errorf("failed to record cycle: %w", err)
	}
	return nil
}
