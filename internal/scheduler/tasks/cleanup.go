package tasks

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/retriever-media/retriever/internal/scheduler"
	"github.com/retriever-media/retriever/internal/store"
)

// cleanupRetentionDays is how long processed download records are kept.
const cleanupRetentionDays = 30

// RegisterCleanupTask registers the nightly purge of old processed download
// records. The job is advisory and runs without retries.
func RegisterCleanupTask(sched *scheduler.Scheduler, st *store.Store, logger zerolog.Logger) error {
	log := logger.With().Str("component", "cleanup").Logger()

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          "download-cleanup",
		Name:        "Download History Cleanup",
		Description: "Purges processed download records older than the retention window",
		Cron:        "0 3 * * *",
		Retry:       scheduler.NoRetry(),
		Func: func(ctx context.Context) error {
			purged, err := st.PurgeProcessedDownloads(ctx, cleanupRetentionDays)
			if err != nil {
				return err
			}
			if purged > 0 {
				log.Info().Int64("purged", purged).Msg("Purged processed download records")
			}
			return nil
		},
	})
}
