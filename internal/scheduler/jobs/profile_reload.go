package jobs

import (
	"context"

	"github.com/wonny/tradecalc/pkg/logger"
)

// Reloader re-reads a configuration source and reports whether it changed
type Reloader interface {
	Reload() (bool, error)
}

// ProfileReloadJob hot-reloads the analytics profile
type ProfileReloadJob struct {
	reloader Reloader
	schedule string
	logger   *logger.Logger
}

// NewProfileReloadJob creates a reload job running on schedule
func NewProfileReloadJob(reloader Reloader, schedule string, log *logger.Logger) *ProfileReloadJob {
	return &ProfileReloadJob{
		reloader: reloader,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *ProfileReloadJob) Name() string {
	return "profile_reload"
}

// Schedule returns the configured cron expression
func (j *ProfileReloadJob) Schedule() string {
	return j.schedule
}

// Run reloads the profile. The previous profile stays active on error.
func (j *ProfileReloadJob) Run(ctx context.Context) error {
	changed, err := j.reloader.Reload()
	if err != nil {
		return err
	}
	if changed {
		j.logger.Info("Analytics profile reloaded")
	}
	return nil
}
