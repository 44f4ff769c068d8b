// Package session keys per-browser console state by a cookie.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultCookieName  = "console_session"
	DefaultIdleTimeout = 30 * time.Minute
	DefaultMaxSessions = 1000
)

// Value is the per-session state; Close runs when the session is evicted.
type Value interface {
	Close()
}

type entry[T Value] struct {
	id       string
	value    T
	lastSeen time.Time
}

type ctxKey struct{}

type Option func(*options)

type options struct {
	cookieName  string
	idleTimeout time.Duration
	sweepEvery  time.Duration
	maxSessions int
	now         func() time.Time
}

func WithCookieName(name string) Option {
	return func(o *options) { o.cookieName = name }
}

func WithIdleTimeout(d time.Duration) Option {
	return func(o *options) { o.idleTimeout = d }
}

// WithSweepInterval sets how often idle sessions are looked for. Zero means
// half the idle timeout; a negative interval disables the janitor.
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) { o.sweepEvery = d }
}

// WithMaxSessions caps the number of live sessions. At the cap a new
// session evicts the least recently used one; zero or less means no cap.
func WithMaxSessions(n int) Option {
	return func(o *options) { o.maxSessions = n }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Store holds one Value per browser. Sessions unused for longer than the
// idle timeout are closed and dropped.
type Store[T Value] struct {
	newValue func() T
	opts     options
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*entry[T]

	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func NewStore[T Value](newValue func() T, logger *zap.Logger, opts ...Option) *Store[T] {
	o := options{
		cookieName:  DefaultCookieName,
		idleTimeout: DefaultIdleTimeout,
		maxSessions: DefaultMaxSessions,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sweepEvery == 0 && o.idleTimeout > 0 {
		o.sweepEvery = o.idleTimeout / 2
	}

	s := &Store[T]{
		newValue: newValue,
		opts:     o,
		logger:   logger,
		sessions: make(map[string]*entry[T]),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	if o.sweepEvery > 0 {
		go s.janitor()
	} else {
		close(s.stopped)
	}
	return s
}

func (s *Store[T]) janitor() {
	defer close(s.stopped)

	ticker := time.NewTicker(s.opts.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stop:
			return
		}
	}
}

// Sweep closes every session idle for longer than the timeout.
func (s *Store[T]) Sweep() int {
	now := s.opts.now()

	s.mu.Lock()
	var expired []*entry[T]
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.opts.idleTimeout {
			expired = append(expired, e)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, e := range expired {
		e.value.Close()
	}
	if len(expired) > 0 {
		s.logger.Debug("evicted idle sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Acquire returns the session with id, or a new one when id is unknown.
// The second result is the id to hand back to the browser.
func (s *Store[T]) Acquire(id string) (T, string) {
	now := s.opts.now()

	s.mu.Lock()
	if e, ok := s.sessions[id]; ok && id != "" {
		e.lastSeen = now
		s.mu.Unlock()
		return e.value, e.id
	}

	var evicted *entry[T]
	if s.opts.maxSessions > 0 && len(s.sessions) >= s.opts.maxSessions {
		evicted = s.leastRecentlyUsed()
		delete(s.sessions, evicted.id)
	}
	e := &entry[T]{
		id:       uuid.NewString(),
		value:    s.newValue(),
		lastSeen: now,
	}
	s.sessions[e.id] = e
	s.mu.Unlock()

	if evicted != nil {
		evicted.value.Close()
		s.logger.Warn("session cap reached, evicted least recently used", zap.String("session", evicted.id))
	}
	s.logger.Debug("session created", zap.String("session", e.id))
	return e.value, e.id
}

// leastRecentlyUsed must be called with s.mu held on a non-empty store.
func (s *Store[T]) leastRecentlyUsed() *entry[T] {
	var oldest *entry[T]
	for _, e := range s.sessions {
		if oldest == nil || e.lastSeen.Before(oldest.lastSeen) {
			oldest = e
		}
	}
	return oldest
}

func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Middleware attaches the browser's session to the request context and
// issues a cookie when the browser has none.
func (s *Store[T]) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(s.opts.cookieName); err == nil {
			id = c.Value
		}

		value, current := s.Acquire(id)
		if current != id {
			http.SetCookie(w, &http.Cookie{
				Name:     s.opts.cookieName,
				Value:    current,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), ctxKey{}, sessionRef[T]{id: current, value: value})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type sessionRef[T Value] struct {
	id    string
	value T
}

// FromContext returns the session attached by Middleware.
func FromContext[T Value](ctx context.Context) (T, bool) {
	ref, ok := ctx.Value(ctxKey{}).(sessionRef[T])
	return ref.value, ok
}

// IDFromContext returns the id of the session attached by Middleware.
func IDFromContext[T Value](ctx context.Context) string {
	ref, _ := ctx.Value(ctxKey{}).(sessionRef[T])
	return ref.id
}

// Close stops the janitor and closes every session.
func (s *Store[T]) Close() {
	s.once.Do(func() {
		close(s.stop)
		<-s.stopped

		s.mu.Lock()
		sessions := s.sessions
		s.sessions = make(map[string]*entry[T])
		s.mu.Unlock()

		for _, e := range sessions {
			e.value.Close()
		}
	})
}
