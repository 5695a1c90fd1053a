package app

import (
	"context"
	"time"

	"github.com/ctkit/ctview/internal/logging"
	"github.com/ctkit/ctview/internal/viewer"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
	pollTimeout         = 5 * time.Second
)

// StartPoller launches a background goroutine that refreshes stream
// statistics at a fixed cadence, backing off exponentially while the
// daemon is unreachable. It returns immediately; the goroutine stops
// when the context is cancelled.
func StartPoller(ctx context.Context, session *viewer.Session, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			if err := refresh(ctx, session); err != nil {
				failures++
				logging.Debug("stats poll failed (%d in a row): %v", failures, err)
			} else {
				failures = 0
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
}

func refresh(ctx context.Context, session *viewer.Session) error {
	fetchCtx, cancel := context.WithTimeout(ctx, pollTimeout)
	defer cancel()
	return session.RefreshStats(fetchCtx)
}

// calculateBackoff doubles the base interval per consecutive failure,
// capped at maxBackoff. Zero failures returns the base interval.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
