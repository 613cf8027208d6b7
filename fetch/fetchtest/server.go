// Package fetchtest serves canned JSON for the /api routes a Fetcher reads.
package fetchtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Route answers one exact path. Status defaults to 200.
type Route struct {
	Path    string
	Status  int
	Respond func(r *http.Request) any
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*http.Request
}

// NewServer starts a mock API for the test and closes it on cleanup.
// Unknown paths answer 404 with a JSON error body.
func NewServer(t testing.TB, routes []Route) *Server {
	t.Helper()

	byPath := make(map[string]Route, len(routes))
	for _, route := range routes {
		byPath[route.Path] = route
	}

	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Clone(r.Context()))
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")

		route, ok := byPath[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
			return
		}

		status := route.Status
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)

		var body any = map[string]any{}
		if route.Respond != nil {
			body = route.Respond(r)
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(s.Close)

	return s
}

// Queries returns the q parameter of every request made to path, in arrival order.
func (s *Server) Queries(path string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var queries []string
	for _, r := range s.requests {
		if r.URL.Path == path {
			queries = append(queries, r.URL.Query().Get("q"))
		}
	}
	return queries
}

// Requests returns how many requests hit paths with the given prefix.
func (s *Server) Requests(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, r := range s.requests {
		if strings.HasPrefix(r.URL.Path, prefix) {
			n++
		}
	}
	return n
}
