// Package scheduler provides unified scheduler management using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"custodia/internal/shared/biztime"
	"custodia/internal/shared/logger"
)

// BatchJob defines the interface for a scheduled batch processing job.
// Each Execute call processes a batch and returns the number of items processed.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// SchedulerManager manages all scheduled jobs on a single gocron instance.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a new SchedulerManager instance.
// It initializes gocron with the business timezone for cron expressions.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterBlockExpiryJobs registers the expired block reaper. The job lifts
// blocks whose window has ended, clearing the ledger flag before removing
// the local row. Runs immediately on startup and then on the configured
// cadence; a slow run is rescheduled rather than overlapped.
func (m *SchedulerManager) RegisterBlockExpiryJobs(expireBlocksJob BatchJob, intervalSeconds int) error {
	interval := 30 * time.Second
	if intervalSeconds > 0 {
		interval = time.Duration(intervalSeconds) * time.Second
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			m.processExpiredBlocks(ctx, expireBlocksJob)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("access", "block-expiry"),
		gocron.WithName("block-expiry-reaper"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered block expiry jobs", "interval", interval)
	return nil
}

func (m *SchedulerManager) processExpiredBlocks(ctx context.Context, expireBlocksJob BatchJob) {
	m.logger.Debugw("processing expired blocks started")

	startTime := biztime.NowUTC()

	liftedCount, err := expireBlocksJob.Execute(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("failed to process expired blocks",
			"error", err,
			"lifted", liftedCount,
			"duration", time.Since(startTime),
		)
		return
	}

	if liftedCount > 0 {
		m.logger.Infow("expired blocks lifted",
			"count", liftedCount,
			"duration", time.Since(startTime),
		)
	} else {
		m.logger.Debugw("no expired blocks to process",
			"duration", time.Since(startTime),
		)
	}
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler.
// It waits for all running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}
