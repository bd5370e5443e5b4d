package worker

import (
	"fmt"
	"time"

	"github.com/mlee/socialnet-backend/config"
	"github.com/mlee/socialnet-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// JobFunc defines the function signature for scheduled jobs
type JobFunc func() error

// CronWorker runs a scheduled job with a configurable interval. Used for
// the periodic recommendation refresh and the failed-embedding retry.
type CronWorker struct {
	name     string
	cron     *cron.Cron
	jobFunc  JobFunc
	interval time.Duration
	logger   *logger.Logger
	entryID  cron.EntryID
}

// NewCronWorker creates a cron-scheduled worker with validation and defaults
func NewCronWorker(cfg *config.WorkerConfig, name string, jobFunc JobFunc, logger *logger.Logger) (*CronWorker, error) {
	// Set defaults for nil or empty config values
	var interval time.Duration = 5 * time.Minute
	if cfg != nil && cfg.RefreshInterval != "" {
		duration, err := time.ParseDuration(cfg.RefreshInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid refresh interval '%s': %v", cfg.RefreshInterval, err)
		}
		interval = duration
	}

	return &CronWorker{
		name:     name,
		cron:     cron.New(),
		jobFunc:  jobFunc,
		interval: interval,
		logger:   logger.WithComponent("cron-worker"),
	}, nil
}

// Start schedules and begins the worker
func (w *CronWorker) Start() error {
	intervalStr := w.durationToCronExpression(w.interval)
	w.logger.Info(fmt.Sprintf("Starting worker: %s (every %v)", w.name, w.interval))

	entryID, err := w.cron.AddFunc(intervalStr, func() {
		w.logger.Debug("Executing scheduled job for worker: " + w.name)

		if err := w.jobFunc(); err != nil {
			w.logger.Error("Scheduled job failed for worker " + w.name + ": " + err.Error())
		} else {
			w.logger.Info("Scheduled job completed successfully for worker: " + w.name)
		}
	})

	if err != nil {
		w.logger.Error("Failed to schedule worker " + w.name + ": " + err.Error())
		return err
	}

	w.entryID = entryID
	w.cron.Start()

	w.logger.Info("Worker started successfully: " + w.name)

	return nil
}

// Stop gracefully shuts down the worker
func (w *CronWorker) Stop() error {
	w.logger.Info("Stopping worker: " + w.name)

	// Remove the scheduled entry
	if w.entryID > 0 {
		w.cron.Remove(w.entryID)
	}

	ctx := w.cron.Stop()
	<-ctx.Done() // Wait for graceful shutdown

	w.logger.Info("Worker stopped: " + w.name)

	return nil
}

// IsRunning checks if the worker has active cron entries
func (w *CronWorker) IsRunning() bool {
	return len(w.cron.Entries()) > 0
}

// durationToCronExpression converts duration to cron format with fallback
func (w *CronWorker) durationToCronExpression(duration time.Duration) string {
	minutes := int(duration.Minutes())
	hours := int(duration.Hours())

	if hours > 0 && minutes%60 == 0 {
		return fmt.Sprintf("0 */%d * * *", hours)
	} else if minutes > 0 && minutes < 60 {
		return fmt.Sprintf("*/%d * * * *", minutes)
	}

	// Fallback for unsupported durations
	w.logger.Warn(fmt.Sprintf("Unsupported refresh interval %v, defaulting to 5 minutes", duration))
	return "*/5 * * * *"
}
