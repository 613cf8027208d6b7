// Package warmup keeps the home page searches in the fetch cache fresh so
// renders hit the cache instead of waiting on GitHub.
package warmup

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Prefetcher refreshes the cached result of one search query
type Prefetcher interface {
	Prefetch(ctx context.Context, query string) error
}

const minInterval = 10 * time.Second

// Worker periodically refreshes a fixed set of queries.
// See retry.go for the backoff rules.
type Worker struct {
	fetcher         Prefetcher
	queries         []string
	timeout         time.Duration
	baseInterval    time.Duration
	maxInterval     time.Duration
	currentInterval time.Duration
	running         bool
	mu              sync.Mutex
	stopChan        chan struct{}
	done            chan struct{}
	logger          *slog.Logger
}

// NewWorker refreshes every query twice per cache ttl while things work,
// and backs off to every other ttl once they don't.
func NewWorker(fetcher Prefetcher, queries []string, ttl time.Duration, logger *slog.Logger) *Worker {
	base := ttl / 2
	if base < minInterval {
		base = minInterval
	}

	return &Worker{
		fetcher:         fetcher,
		queries:         queries,
		timeout:         10 * time.Second,
		baseInterval:    base,
		maxInterval:     4 * base,
		currentInterval: base,
		logger:          logger,
	}
}

// Start begins the background refresh loop
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return
	}
	w.running = true
	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})

	w.logger.Info("warmup worker starting", "queries", len(w.queries), "interval", w.currentInterval)

	go w.run(w.stopChan, w.done)
}

// Stop ends the loop and waits for an in-progress refresh to finish
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopChan)
	done := w.done
	w.mu.Unlock()

	<-done
}

func (w *Worker) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	w.mu.Lock()
	interval := w.currentInterval
	w.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.adjust(ticker, w.refresh(stop))

	for {
		select {
		case <-ticker.C:
			w.adjust(ticker, w.refresh(stop))
		case <-stop:
			return
		}
	}
}

// adjust moves the ticker to the interval the last outcome calls for
func (w *Worker) adjust(ticker *time.Ticker, outcome refreshResult) {
	w.mu.Lock()
	defer w.mu.Unlock()

	next := w.nextInterval(outcome)
	if next == w.currentInterval {
		return
	}

	w.currentInterval = next
	ticker.Reset(next)
	w.logger.Info("warmup interval changed",
		"interval", next,
		"refreshed", outcome.refreshed,
		"failed", outcome.failed,
		"rate_limited", outcome.rateLimited,
	)
}
