package elasticsearch

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// WaitReady pings the cluster until it answers, backing off exponentially from delay
// up to 30s between attempts. It gives up after attempts pings or when ctx ends.
func (c *Client) WaitReady(ctx context.Context, attempts int, delay time.Duration) error {
	const maxDelay = 30 * time.Second

	var err error
	for i := 0; i < attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = c.Ping(pingCtx)
		cancel()
		if err == nil {
			c.log.Info("connected to elasticsearch", slog.Int("attempt", i+1))
			return nil
		}
		if i == attempts-1 {
			break
		}

		c.log.Warn("elasticsearch ping failed, retrying",
			slog.Any("err", err),
			slog.Int("attempt", i+1),
			slog.Int("max_retries", attempts),
			slog.Duration("retry_in", delay),
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay = min(delay*2, maxDelay)
	}
	return fmt.Errorf("elasticsearch unreachable after %d attempts: %w", attempts, err)
}
