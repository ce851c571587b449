package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestRunWithRetry(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("success on first attempt runs once", func(t *testing.T) {
		calls := 0
		err := RunWithRetry(context.Background(), "job", testRetryConfig(2), logger, func(context.Context) error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 1 {
			t.Fatalf("calls = %d, want 1", calls)
		}
	})

	t.Run("max retries counts retries not attempts", func(t *testing.T) {
		calls := 0
		wantErr := errors.New("boom")
		err := RunWithRetry(context.Background(), "job", testRetryConfig(2), logger, func(context.Context) error {
			calls++
			return wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Fatalf("error = %v, want %v", err, wantErr)
		}
		if calls != 3 {
			t.Fatalf("calls = %d, want 3 (initial + 2 retries)", calls)
		}
	})

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := RunWithRetry(context.Background(), "job", testRetryConfig(3), logger, func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 3 {
			t.Fatalf("calls = %d, want 3", calls)
		}
	})

	t.Run("no retry preset runs exactly once", func(t *testing.T) {
		calls := 0
		err := RunWithRetry(context.Background(), "job", NoRetry(), logger, func(context.Context) error {
			calls++
			return errors.New("fail")
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if calls != 1 {
			t.Fatalf("calls = %d, want 1", calls)
		}
	})

	t.Run("context cancel stops backoff", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cfg := RetryConfig{
			MaxRetries:   5,
			InitialDelay: time.Minute,
			MaxDelay:     time.Minute,
			Multiplier:   2.0,
		}

		calls := 0
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		err := RunWithRetry(ctx, "job", cfg, logger, func(context.Context) error {
			calls++
			return errors.New("fail")
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
		if calls != 1 {
			t.Fatalf("calls = %d, want 1", calls)
		}
	})
}

func TestRetryPresets(t *testing.T) {
	d := DefaultRetry()
	if d.MaxRetries != 2 || d.InitialDelay != 5*time.Second || d.MaxDelay != 60*time.Second {
		t.Fatalf("unexpected default preset: %+v", d)
	}
	c := CriticalRetry()
	if c.MaxRetries != 3 || c.InitialDelay != 10*time.Second || c.MaxDelay != 120*time.Second {
		t.Fatalf("unexpected critical preset: %+v", c)
	}
	if NoRetry().MaxRetries != 0 {
		t.Fatal("NoRetry should allow zero retries")
	}
}
