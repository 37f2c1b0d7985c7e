package db

import (
	"context"
	"time"

	"github.com/ARQAP/archive-backend/src/logging"
)

// Watch pings the store every interval. After maxFailures consecutive
// failed pings it calls onLost once and returns; losing the pool is
// treated as unrecoverable.
func Watch(ctx context.Context, gw Gateway, interval time.Duration, maxFailures int, onLost func(error)) {
	if interval <= 0 {
		return
	}
	if maxFailures < 1 {
		maxFailures = 1
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, interval)
			err := gw.Ping(pingCtx)
			cancel()

			if ctx.Err() != nil {
				return
			}
			if err == nil {
				failures = 0
				continue
			}

			failures++
			logging.Warn().Err(err).Int("failures", failures).Msg("database ping failed")
			if failures >= maxFailures {
				onLost(err)
				return
			}
		}
	}
}
