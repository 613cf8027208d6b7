package warmup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"repo-browser/fetch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPrefetcher is a mock implementation of Prefetcher interface
type MockPrefetcher struct {
	mock.Mock
}

var _ Prefetcher = (*MockPrefetcher)(nil)

func (m *MockPrefetcher) Prefetch(ctx context.Context, query string) error {
	return m.Called(query).Error(0)
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestWorker_Refresh(t *testing.T) {
	queries := []string{"language:rust", "language:go", "language:java"}

	tests := []struct {
		name      string
		mockSetup func(*MockPrefetcher)
		expected  refreshResult
	}{
		{
			name: "All queries refreshed",
			mockSetup: func(m *MockPrefetcher) {
				m.On("Prefetch", mock.Anything).Return(nil)
			},
			expected: refreshResult{refreshed: 3},
		},
		{
			name: "One failure does not stop the pass",
			mockSetup: func(m *MockPrefetcher) {
				m.On("Prefetch", "language:rust").Return(nil)
				m.On("Prefetch", "language:go").Return(errors.New("timeout"))
				m.On("Prefetch", "language:java").Return(nil)
			},
			expected: refreshResult{refreshed: 2, failed: 1},
		},
		{
			name: "Rate limit ends the pass",
			mockSetup: func(m *MockPrefetcher) {
				m.On("Prefetch", "language:rust").Return(&fetch.StatusError{Code: http.StatusTooManyRequests})
			},
			expected: refreshResult{failed: 1, rateLimited: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockPrefetcher)
			tt.mockSetup(m)

			w := NewWorker(m, queries, time.Minute, testLogger)
			got := w.refresh(make(chan struct{}))

			assert.Equal(t, tt.expected, got)
			m.AssertExpectations(t)
		})
	}
}

func TestWorker_NextInterval(t *testing.T) {
	w := NewWorker(new(MockPrefetcher), nil, time.Minute, testLogger)

	assert.Equal(t, 30*time.Second, w.baseInterval)
	assert.Equal(t, 2*time.Minute, w.maxInterval)

	assert.Equal(t, w.baseInterval, w.nextInterval(refreshResult{refreshed: 6}))
	assert.Equal(t, w.maxInterval, w.nextInterval(refreshResult{refreshed: 5, failed: 1}))
	assert.Equal(t, w.maxInterval, w.nextInterval(refreshResult{failed: 1, rateLimited: true}))
}

func TestNewWorker_MinimumInterval(t *testing.T) {
	w := NewWorker(new(MockPrefetcher), nil, time.Second, testLogger)
	assert.Equal(t, minInterval, w.baseInterval)
}

// countingPrefetcher records queries without testify so it is safe to use
// from the worker goroutine
type countingPrefetcher struct {
	mu      sync.Mutex
	queries []string
}

func (p *countingPrefetcher) Prefetch(ctx context.Context, query string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queries = append(p.queries, query)
	return nil
}

func (p *countingPrefetcher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queries)
}

func TestWorker_StartStop(t *testing.T) {
	p := &countingPrefetcher{}
	w := NewWorker(p, []string{"language:go", "language:rust"}, time.Hour, testLogger)

	w.Start()
	w.Start()

	assert.Eventually(t, func() bool { return p.count() >= 2 }, time.Second, 10*time.Millisecond,
		"worker refreshes immediately on start")

	w.Stop()
	w.Stop()

	n := p.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, p.count(), "no refreshes after stop")
}
