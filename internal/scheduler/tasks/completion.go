package tasks

import (
	"context"
	"fmt"

	"github.com/retriever-media/retriever/internal/completion"
	"github.com/retriever-media/retriever/internal/config"
	"github.com/retriever-media/retriever/internal/downloads"
	"github.com/retriever-media/retriever/internal/scheduler"
)

// RegisterCompletionTask registers the download-completion monitor. It runs
// once per minute by default: first it refreshes engine state for in-flight
// downloads, then it reconciles finished downloads into library state under
// the critical retry policy.
func RegisterCompletionTask(sched *scheduler.Scheduler, processor *completion.Service, dl *downloads.Service, cfg *config.JobsConfig) error {
	cron := cfg.CompletionCron
	if cron == "" {
		cron = "* * * * *"
	}

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          "completion-monitor",
		Name:        "Download Completion Monitor",
		Description: "Imports and organizes files from completed downloads",
		Cron:        cron,
		Func: func(ctx context.Context) error {
			if err := dl.SyncInFlight(ctx); err != nil {
				return fmt.Errorf("failed to sync download states: %w", err)
			}
			return processor.ProcessCompletedDownloads(ctx)
		},
		Retry:          scheduler.CriticalRetry(),
		RunOnStart:     true,
		PreventOverlap: cfg.PreventOverlap,
	})
}
