package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// RecordedRequest is one request received by the fake backend.
type RecordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Body     []byte
}

// Backend is a fake of the order-management API that records every request
// it receives. Unregistered routes answer 404.
type Backend struct {
	server *httptest.Server
	router chi.Router

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewBackend starts a fake backend that is closed when the test ends.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{router: chi.NewRouter()}
	b.router.Use(b.record)
	b.server = httptest.NewServer(b.router)
	t.Cleanup(b.server.Close)

	return b
}

func (b *Backend) URL() string {
	return b.server.URL
}

// Handle registers a handler for method and chi pattern.
func (b *Backend) Handle(method, pattern string, h http.HandlerFunc) {
	b.router.MethodFunc(method, pattern, h)
}

// JSON registers a route that always answers with status and body.
func (b *Backend) JSON(method, pattern string, status int, body any) {
	b.Handle(method, pattern, func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, status, body)
	})
}

func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// Count returns how many requests hit method and path.
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Last returns the most recent request for method and path.
func (b *Backend) Last(method, path string) (RecordedRequest, bool) {
	reqs := b.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Path == path {
			return reqs[i], true
		}
	}
	return RecordedRequest{}, false
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Body:     body,
		})
		b.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
