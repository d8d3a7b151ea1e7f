package jobs

import (
	"context"
	"time"

	"rentmarket-backend/internal/config"
	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	maintenance service.MaintenanceService
	config      *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(maintenance service.MaintenanceService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		maintenance: maintenance,
		config:      cfg,
	}
}

// Config returns the configuration the jobs were built with.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery. It reports
// whether the job finished without error.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			ok = false
		}
	}()

	start := time.Now()
	logger.Info("Starting job", "job", jobName)
	if err := jobFunc(context.Background()); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err, "duration", time.Since(start))
		return false
	}
	logger.Info("Job completed", "job", jobName, "duration", time.Since(start))
	return true
}

// RunAll runs every maintenance job once (for manual execution). It reports
// whether all of them succeeded.
func (jr *JobRunner) RunAll() bool {
	ok := jr.ExpireStalePendingRequests()
	ok = jr.SendRentalStartReminders() && ok
	ok = jr.PurgeDeletedNotifications() && ok
	return ok
}
