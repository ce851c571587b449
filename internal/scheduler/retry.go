package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RetryConfig configures the exponential backoff wrapper applied to a job
// body. MaxRetries counts retries, not attempts: MaxRetries=2 allows up to
// three invocations.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetry is the preset for best-effort jobs (library scan, RSS poll,
// schedule sync).
func DefaultRetry() RetryConfig {
	return RetryConfig{
		MaxRetries:   2,
		InitialDelay: 5 * time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   2.0,
	}
}

// CriticalRetry is the preset for jobs whose failure has user-visible
// consequences (auto-download, download-completion processing).
func CriticalRetry() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 10 * time.Second,
		MaxDelay:     120 * time.Second,
		Multiplier:   2.0,
	}
}

// NoRetry is the preset for purely advisory cleanup jobs.
func NoRetry() RetryConfig {
	return RetryConfig{MaxRetries: 0}
}

// RunWithRetry executes fn with exponential backoff. Only the calling
// goroutine sleeps during backoff; the scheduler and other jobs are never
// blocked. There is no jitter, and total wall-clock time is bounded only by
// MaxRetries * MaxDelay.
func RunWithRetry(ctx context.Context, name string, cfg RetryConfig, logger zerolog.Logger, fn func(context.Context) error) error {
	delay := cfg.InitialDelay

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info().
					Str("job", name).
					Int("attempt", attempt).
					Msg("Job succeeded after retry")
			}
			return nil
		}

		if attempt > cfg.MaxRetries {
			logger.Error().
				Err(err).
				Str("job", name).
				Int("attempts", attempt).
				Msg("Job failed after all retries")
			return err
		}

		logger.Warn().
			Err(err).
			Str("job", name).
			Int("attempt", attempt).
			Int("maxRetries", cfg.MaxRetries).
			Dur("nextRetryIn", delay).
			Msg("Job failed, will retry")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
}
