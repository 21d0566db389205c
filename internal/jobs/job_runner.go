package jobs

import (
	"fmt"
	"time"

	"carrental-backend/internal/config"
	"carrental-backend/internal/logger"
	"carrental-backend/internal/metrics"
	"carrental-backend/internal/service"
)

// Job names accepted by RunOnce.
const (
	JobSyncCarAvailability = "sync-car-availability"
	JobFlagLateReturns     = "flag-late-returns"
	JobAllNightly          = "all-nightly"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	bookings service.BookingService
	config   *config.Config
	now      func() time.Time
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(bookings service.BookingService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		bookings: bookings,
		config:   cfg,
		now:      time.Now,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery. The outcome is
// counted per job as ok, error or panic.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func() error) {
	log := logger.WithService("jobs").With("job", jobName)
	defer func() {
		if r := recover(); r != nil {
			metrics.IncJobRun(jobName, "panic")
			log.Error("Job panicked", "panic", r)
		}
	}()

	log.Info("Starting job")
	start := time.Now()
	if err := jobFunc(); err != nil {
		metrics.IncJobRun(jobName, "error")
		log.Error("Job failed", "error", err)
		return
	}
	metrics.IncJobRun(jobName, "ok")
	log.Info("Job completed", "duration", time.Since(start))
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.SyncCarAvailability()
	jr.FlagLateReturns()
}

// RunOnce runs the named job synchronously.
func (jr *JobRunner) RunOnce(jobName string) error {
	switch jobName {
	case JobSyncCarAvailability:
		jr.SyncCarAvailability()
	case JobFlagLateReturns:
		jr.FlagLateReturns()
	case JobAllNightly:
		jr.RunAllNightlyJobs()
	default:
		return fmt.Errorf("unknown job %q (available: %s, %s, %s)", jobName, JobSyncCarAvailability, JobFlagLateReturns, JobAllNightly)
	}
	return nil
}
