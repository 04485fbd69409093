package sync

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ashfall/tdx/internal/models"
	"github.com/ashfall/tdx/internal/shared"
)

// FeedClient is the read-only surface the coordinator needs from the
// telemetry client. The abstraction keeps cycle logic testable without a
// live backend.
type FeedClient interface {
	BaseURL() string
	FetchAnalytics(ctx context.Context) (*models.AnalyticsSummary, error)
	FetchAnomalies(ctx context.Context) ([]models.AnomalyRecord, error)
	FetchPrediction(ctx context.Context) (*models.PredictionResult, error)
}

// Journal records cycle outcomes for diagnostics. Implementations must be
// safe for use from the cycle goroutine; recording failures are logged, not
// propagated.
type Journal interface {
	Record(record *models.CycleRecord) error
}

// CycleError is the single classified error a failed cycle surfaces to
// callers. Raw transport errors never pass the coordinator boundary.
type CycleError struct {
	Info ErrorInfo
}

func (e *CycleError) Error() string {
	return e.Info.Message
}

// feedResult carries one feed's outcome across the join point.
type feedResult struct {
	feed string
	err  error
}

// Coordinator runs refresh cycles: three concurrent feed queries, an
// all-succeed barrier, and exactly one store write per cycle.
type Coordinator struct {
	client     FeedClient
	store      *Store
	classifier *Classifier
	journal    Journal
	timeout    time.Duration
	logger     *log.Logger
}

// CoordinatorOpts contains configuration for creating a [Coordinator].
type CoordinatorOpts struct {
	Client  FeedClient
	Store   *Store
	Journal Journal       // optional; nil disables the cycle journal
	Timeout time.Duration // per-request budget, defaults to 10s
	Logger  *log.Logger
}

// NewCoordinator creates a coordinator with the provided dependencies.
func NewCoordinator(opts CoordinatorOpts) *Coordinator {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Coordinator{
		client:     opts.Client,
		store:      opts.Store,
		classifier: NewClassifier(opts.Client.BaseURL()),
		journal:    opts.Journal,
		timeout:    opts.Timeout,
		logger:     opts.Logger,
	}
}

// Store returns the state store this coordinator writes to.
func (c *Coordinator) Store() *Store {
	return c.store
}

// Run executes one refresh cycle. The three feed queries run concurrently,
// each under its own per-request timeout, and the cycle waits for all three
// outcomes before deciding: every result is discarded unless all succeed, so
// no partial snapshot is ever observable. The store receives exactly one
// write — a snapshot on success, a classified error on failure.
//
// Returns [shared.ErrCycleInFlight] when another cycle is running (the
// trigger is dropped), a [*CycleError] when the cycle failed, nil otherwise.
func (c *Coordinator) Run(ctx context.Context, trigger models.CycleTrigger) error {
	epoch, err := c.store.Begin()
	if err != nil {
		return err
	}
	return c.runCycle(ctx, trigger, epoch)
}

// runCycle executes a cycle whose slot has already been claimed via
// [Store.Begin]. Callers that need the claim to happen before a goroutine
// boundary (so a concurrent Invalidate stales the epoch) claim it themselves
// and pass the epoch in.
func (c *Coordinator) runCycle(ctx context.Context, trigger models.CycleTrigger, epoch uint64) error {
	cycleID := shared.GenerateID()
	startedAt := time.Now()
	logger := shared.WithLogger(c.logger, "cycle", cycleID, "trigger", string(trigger))
	logger.Debug("cycle started")

	var (
		analytics  *models.AnalyticsSummary
		anomalies  []models.AnomalyRecord
		prediction *models.PredictionResult
	)

	results := make(chan feedResult, 3)

	run := func(feed string, fetch func(context.Context) error) {
		fctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		results <- feedResult{feed: feed, err: fetch(fctx)}
	}

	go run("analytics", func(fctx context.Context) error {
		var ferr error
		analytics, ferr = c.client.FetchAnalytics(fctx)
		return ferr
	})
	go run("anomalies", func(fctx context.Context) error {
		var ferr error
		anomalies, ferr = c.client.FetchAnomalies(fctx)
		return ferr
	})
	go run("prediction", func(fctx context.Context) error {
		var ferr error
		prediction, ferr = c.client.FetchPrediction(fctx)
		return ferr
	})

	// Join point: wait for all three outcomes even after a failure, since
	// successful branches must be discarded when any branch fails.
	failures := map[string]error{}
	for i := 0; i < 3; i++ {
		res := <-results
		if res.err != nil {
			failures[res.feed] = res.err
		}
	}

	finishedAt := time.Now()
	record := &models.CycleRecord{
		ID:         cycleID,
		Trigger:    trigger,
		Duration:   finishedAt.Sub(startedAt),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}

	if len(failures) == 0 {
		snapshot := models.NewSnapshot(cycleID, analytics, anomalies, prediction, finishedAt)
		record.ReadingCount = len(analytics.RecentReadings)
		record.AnomalyCount = len(snapshot.Anomalies)

		if c.store.Commit(epoch, snapshot) {
			record.Outcome = models.OutcomeCommitted
			logger.Debug("cycle committed", "readings", record.ReadingCount, "anomalies", record.AnomalyCount)
		} else {
			record.Outcome = models.OutcomeDiscarded
			logger.Debug("cycle resolved after teardown, result discarded")
		}

		c.record(logger, record)
		return nil
	}

	info := c.classifier.Classify(firstFailure(failures))
	record.ErrorCategory = info.Category.String()
	record.ErrorMessage = info.Message

	if c.store.Fail(epoch, info) {
		record.Outcome = models.OutcomeFailed
		logger.Warn("cycle failed", "category", info.Category.String(), "message", info.Message)
	} else {
		record.Outcome = models.OutcomeDiscarded
		logger.Debug("cycle resolved after teardown, result discarded")
	}

	c.record(logger, record)
	return &CycleError{Info: info}
}

// firstFailure picks the failure to classify in fixed feed order so a
// multi-feed outage reports deterministically.
func firstFailure(failures map[string]error) (string, error) {
	for _, feed := range []string{"analytics", "anomalies", "prediction"} {
		if err, ok := failures[feed]; ok {
			return feed, err
		}
	}
	return "", nil
}

// record writes a journal entry, logging instead of failing the cycle when
// the journal is unavailable.
func (c *Coordinator) record(logger *log.Logger, rec *models.CycleRecord) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Record(rec); err != nil {
		logger.Warn("failed to record cycle", "err", err)
	}
}
