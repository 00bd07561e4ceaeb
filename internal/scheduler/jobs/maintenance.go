package jobs

import (
	"context"
	"time"

	"github.com/wonny/tradecalc/pkg/logger"
)

// Sweeper drops per-client state idle for longer than maxIdle
type Sweeper interface {
	Sweep(maxIdle time.Duration) int
}

// LimiterCleanupJob evicts idle clients from the in-process rate limiter
type LimiterCleanupJob struct {
	sweeper Sweeper
	maxIdle time.Duration
	logger  *logger.Logger
}

// NewLimiterCleanupJob creates a new limiter cleanup job
func NewLimiterCleanupJob(sweeper Sweeper, maxIdle time.Duration, log *logger.Logger) *LimiterCleanupJob {
	return &LimiterCleanupJob{
		sweeper: sweeper,
		maxIdle: maxIdle,
		logger:  log,
	}
}

// Name returns the job name
func (j *LimiterCleanupJob) Name() string {
	return "limiter_cleanup"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *LimiterCleanupJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run executes the cleanup
func (j *LimiterCleanupJob) Run(ctx context.Context) error {
	if count := j.sweeper.Sweep(j.maxIdle); count > 0 {
		j.logger.WithField("removed", count).Debug("Rate limiter cleanup completed")
	}
	return nil
}
