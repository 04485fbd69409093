package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"

	"github.com/ashfall/tdx/internal/models"
	"github.com/ashfall/tdx/internal/shared"
)

// Scheduler owns the repeating refresh timer and the manual trigger entry
// point; it is the only source of refresh cycles. Built on gocron with
// singleton mode so the periodic job never overlaps itself; the store's
// in-flight guard additionally serializes manual triggers against ticks.
type Scheduler struct {
	mu          gosync.Mutex
	coordinator *Coordinator
	interval    time.Duration
	logger      *log.Logger

	scheduler gocron.Scheduler
	ctx       context.Context
	running   bool
}

// NewScheduler creates a scheduler firing at the given interval
// (defaults to 30s).
func NewScheduler(coordinator *Coordinator, interval time.Duration, logger *log.Logger) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Scheduler{
		coordinator: coordinator,
		interval:    interval,
		logger:      logger,
	}
}

// Start begins the refresh loop: one cycle immediately, then one per
// interval until [Scheduler.Stop]. Idempotent; starting a running scheduler
// has no additional effect.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.tick),
		gocron.WithName("refresh"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule refresh job: %w", err)
	}

	s.scheduler = sched
	s.ctx = ctx
	s.running = true
	sched.Start()

	s.logger.Debug("scheduler started", "interval", s.interval)
	return nil
}

// Stop cancels the repeating timer. Idempotent; after Stop returns no
// further cycle runs, and cycles still in flight resolve against a stale
// epoch and are discarded rather than written.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}

	// Flip the running flag and stale every claimed epoch before releasing
	// the lock: a cycle claimed earlier is now discarded at write time, and
	// one that has not claimed yet will see the stopped flag.
	sched := s.scheduler
	s.scheduler = nil
	s.running = false
	s.coordinator.Store().Invalidate()
	s.mu.Unlock()

	if err := sched.Shutdown(); err != nil {
		return fmt.Errorf("failed to shut down scheduler: %w", err)
	}

	s.logger.Debug("scheduler stopped")
	return nil
}

// TriggerNow requests an out-of-band cycle. While a cycle is already in
// flight the request is dropped and [shared.ErrCycleInFlight] is returned so
// the UI can disable its refresh affordance; triggers are never queued.
// Returns [shared.ErrSchedulerStopped] when the scheduler is not running.
//
// The cycle slot is claimed before this returns, while the scheduler lock is
// held. A Stop that follows an accepted trigger therefore always invalidates
// the claimed epoch, and the late result is discarded instead of written.
func (s *Scheduler) TriggerNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return shared.ErrSchedulerStopped
	}

	epoch, err := s.coordinator.Store().Begin()
	if err != nil {
		return err
	}

	ctx := s.ctx
	go func() {
		if err := s.coordinator.runCycle(ctx, models.TriggerManual, epoch); err != nil {
			s.logger.Debug("manual cycle failed", "err", err)
		}
	}()

	return nil
}

// tick runs one scheduled cycle. A tick that lands while a cycle is still
// in flight is coalesced away by the store's guard. The slot is claimed
// under the scheduler lock for the same teardown ordering as TriggerNow.
func (s *Scheduler) tick() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	epoch, err := s.coordinator.Store().Begin()
	s.mu.Unlock()

	if err != nil {
		s.logger.Debug("tick dropped, cycle already in flight")
		return
	}

	if err := s.coordinator.runCycle(ctx, models.TriggerScheduled, epoch); err != nil {
		var cycleErr *CycleError
		if errors.As(err, &cycleErr) {
			// Already logged and recorded by the coordinator.
			return
		}
		s.logger.Warn("scheduled cycle failed", "err", err)
	}
}
