package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/phrazzld/thinkforge-api/internal/platform/logger"
)

// RetryConfig controls RetryingCompleter.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BaseDelay is doubled after every failed attempt.
	BaseDelay time.Duration
}

// RetryingCompleter retries transient failures of the wrapped Completer
// with exponential backoff and jitter. Other errors are returned at once.
type RetryingCompleter struct {
	inner  Completer
	cfg    RetryConfig
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps c with retry behaviour.
func WithRetry(c Completer, cfg RetryConfig, l *slog.Logger) *RetryingCompleter {
	if l == nil {
		l = slog.Default()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &RetryingCompleter{
		inner:  c,
		cfg:    cfg,
		logger: l.With("component", "retrying_completer"),
		sleep:  sleepContext,
	}
}

// Model returns the wrapped model name.
func (r *RetryingCompleter) Model() string {
	return r.inner.Model()
}

// Complete implements Completer.
func (r *RetryingCompleter) Complete(ctx context.Context, prompt Prompt) (string, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	for attempt := 0; ; attempt++ {
		text, err := r.inner.Complete(ctx, prompt)
		if err == nil {
			if attempt > 0 {
				log.InfoContext(ctx, "completion succeeded after retry",
					slog.Int("attempt", attempt+1),
					slog.String("model", r.inner.Model()))
			}
			return text, nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || !IsRetryable(err) {
			return "", err
		}
		if attempt >= r.cfg.MaxRetries {
			log.WarnContext(ctx, "maximum retry attempts reached",
				slog.Int("max_retries", r.cfg.MaxRetries),
				slog.String("error", err.Error()))
			return "", fmt.Errorf("exceeded %d retries: %w", r.cfg.MaxRetries, err)
		}

		delay := r.backoff(attempt)
		log.InfoContext(ctx, "retrying completion after transient failure",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		if err := r.sleep(ctx, delay); err != nil {
			return "", fmt.Errorf("%w: %v", ErrTransientFailure, err)
		}
	}
}

// backoff returns BaseDelay * 2^attempt scaled by a jitter factor in [0.5, 1).
func (r *RetryingCompleter) backoff(attempt int) time.Duration {
	base := float64(r.cfg.BaseDelay) * math.Pow(2, float64(attempt))
	return time.Duration(base * (0.5 + rand.Float64()*0.5))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
