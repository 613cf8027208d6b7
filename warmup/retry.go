package warmup

import (
	"context"
	"time"

	"repo-browser/fetch"
)

// ==================== REFRESH & BACKOFF ====================

// refreshResult holds the result of one pass over the queries
type refreshResult struct {
	refreshed   int
	failed      int
	rateLimited bool
}

// refresh prefetches every query in order. A rate-limited response ends the
// pass early; the remaining queries would only be rejected too.
func (w *Worker) refresh(stop <-chan struct{}) refreshResult {
	var result refreshResult

	for _, query := range w.queries {
		select {
		case <-stop:
			return result
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		err := w.fetcher.Prefetch(ctx, query)
		cancel()

		if err == nil {
			result.refreshed++
			continue
		}

		result.failed++
		w.logger.Warn("warmup prefetch failed", "query", query, "error", err)

		if fetch.IsRateLimited(err) {
			result.rateLimited = true
			return result
		}
	}

	return result
}

// nextInterval is the base interval after a clean pass and the max interval
// after any failure
func (w *Worker) nextInterval(outcome refreshResult) time.Duration {
	if outcome.failed == 0 && !outcome.rateLimited {
		return w.baseInterval
	}
	return w.maxInterval
}
