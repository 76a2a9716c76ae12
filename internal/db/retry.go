package db

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Backoff is the wait before retry attempt n (0-based):
// 500ms, 1s, 2s, ... capped at 8s, plus up to 100ms of jitter.
func Backoff(attempt int) time.Duration {
	base := 500 * time.Millisecond
	capDelay := 8 * time.Second

	delay := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if delay > capDelay || delay <= 0 {
		delay = capDelay
	}

	return delay + time.Duration(rand.Intn(100))*time.Millisecond
}

// ConnectWithRetry keeps calling NewPool until it succeeds, attempts run
// out or ctx is done. Postgres in compose setups often comes up after the API.
func ConnectWithRetry(ctx context.Context, dbURL string, maxConns int32, attempts int, log *slog.Logger) (*pgxpool.Pool, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		pool, err := NewPool(dbURL, maxConns)
		if err == nil {
			return pool, nil
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}

		wait := Backoff(attempt)
		log.Warn("database not reachable, retrying", "attempt", attempt+1, "wait_ms", wait.Milliseconds(), "err", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	return nil, fmt.Errorf("connect database after %d attempts: %w", attempts, lastErr)
}
