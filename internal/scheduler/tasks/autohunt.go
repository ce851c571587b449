// Package tasks registers the application's scheduled jobs.
package tasks

import (
	"fmt"

	"github.com/retriever-media/retriever/internal/config"
	"github.com/retriever-media/retriever/internal/hunt"
	"github.com/retriever-media/retriever/internal/scheduler"
)

// RegisterAutoHuntTask registers the periodic hunt over wanted items.
// Auto-download failures are user-visible, so the job runs under the critical
// retry policy.
func RegisterAutoHuntTask(sched *scheduler.Scheduler, runner *hunt.Runner, cfg *config.JobsConfig) error {
	// Build cron expression from interval hours: minute 0 of every Nth hour.
	cronExpr := fmt.Sprintf("0 */%d * * *", cfg.AutoHuntIntervalHours)
	if cfg.AutoHuntIntervalHours <= 1 {
		cronExpr = "0 * * * *"
	} else if cfg.AutoHuntIntervalHours >= 24 {
		cronExpr = "0 0 * * *"
	}

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:             "autohunt",
		Name:           "Automatic Hunt",
		Description:    "Searches for missing monitored items and downloads the best available releases",
		Cron:           cronExpr,
		Func:           runner.Run,
		Retry:          scheduler.CriticalRetry(),
		RunOnStart:     false,
		PreventOverlap: cfg.PreventOverlap,
	})
}
