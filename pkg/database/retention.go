package database

import (
	"context"
	"fmt"
	"time"

	"github.com/latoulicious/holocron/pkg/logging"
	"github.com/robfig/cron/v3"
)

// Pruner removes persisted entries older than a cutoff
type Pruner interface {
	PruneBefore(cutoff time.Time) (int64, error)
}

// RetentionJob periodically prunes old operational logs
type RetentionJob struct {
	cron      *cron.Cron
	pruner    Pruner
	retention time.Duration
	schedule  string
	logger    logging.Logger
	now       func() time.Time
}

// NewRetentionJob registers the prune run on the given cron schedule (standard 5-field spec)
func NewRetentionJob(pruner Pruner, retention time.Duration, schedule string, logger logging.Logger) (*RetentionJob, error) {
	if retention <= 0 {
		return nil, fmt.Errorf("retention must be positive, got %v", retention)
	}

	job := &RetentionJob{
		cron:      cron.New(),
		pruner:    pruner,
		retention: retention,
		schedule:  schedule,
		logger:    logger,
		now:       time.Now,
	}

	if _, err := job.cron.AddFunc(schedule, func() { _, _ = job.Run() }); err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", schedule, err)
	}

	return job, nil
}

// Start begins the cron scheduler in its own goroutine
func (j *RetentionJob) Start() {
	j.logger.Info("Starting log retention job", map[string]interface{}{
		"schedule":  j.schedule,
		"retention": j.retention.String(),
	})
	j.cron.Start()
}

// Stop halts the scheduler and waits for a running prune to finish or ctx to expire
func (j *RetentionJob) Stop(ctx context.Context) {
	done := j.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		j.logger.Warn("Retention job did not stop before deadline", nil)
	}
}

// Run prunes once and reports how many entries were removed
func (j *RetentionJob) Run() (int64, error) {
	cutoff := j.now().Add(-j.retention)
	removed, err := j.pruner.PruneBefore(cutoff)
	if err != nil {
		j.logger.Error("Failed to prune old logs", err, map[string]interface{}{
			"cutoff": cutoff.Format(time.RFC3339),
		})
		return 0, err
	}

	j.logger.Info("Pruned old logs", map[string]interface{}{
		"cutoff":  cutoff.Format(time.RFC3339),
		"removed": removed,
	})
	return removed, nil
}
