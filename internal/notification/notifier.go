// Package notification is the toast channel shared by the views of one
// browser session. It keeps a single visible message: publishing replaces
// whatever is shown, and the message disappears after a fixed interval.
package notification

import (
	"sync"
	"time"
)

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
)

func (s Severity) Valid() bool {
	switch s {
	case Success, Error, Warning, Info:
		return true
	}
	return false
}

type Notification struct {
	Seq         uint64
	Message     string
	Severity    Severity
	PublishedAt time.Time
}

type Option func(*Notifier)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) {
		n.now = now
	}
}

type Notifier struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	seq     uint64
	current *Notification
	sub     chan Notification
}

func New(ttl time.Duration, opts ...Option) *Notifier {
	n := &Notifier{
		ttl: ttl,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify publishes a message. It never blocks; an unknown severity is
// published as Info.
func (n *Notifier) Notify(message string, severity Severity) {
	if !severity.Valid() {
		severity = Info
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.seq++
	note := Notification{
		Seq:         n.seq,
		Message:     message,
		Severity:    severity,
		PublishedAt: n.now(),
	}
	n.current = &note

	if n.sub == nil {
		return
	}
	// Only Notify sends, and it holds the lock, so after draining the slot
	// is free.
	select {
	case <-n.sub:
	default:
	}
	n.sub <- note
}

// Current returns the visible notification, if it has not expired.
func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.current == nil {
		return Notification{}, false
	}
	if n.ttl > 0 && n.now().Sub(n.current.PublishedAt) >= n.ttl {
		n.current = nil
		return Notification{}, false
	}
	return *n.current, true
}

func (n *Notifier) Dismiss() {
	n.mu.Lock()
	n.current = nil
	n.mu.Unlock()
}

func (n *Notifier) TTL() time.Duration {
	return n.ttl
}

// Subscribe registers the rendering surface. There is only one subscriber:
// a new call closes the previous channel. A message that was not consumed
// yet is replaced by the next one.
func (n *Notifier) Subscribe() (<-chan Notification, func()) {
	ch := make(chan Notification, 1)

	n.mu.Lock()
	if n.sub != nil {
		close(n.sub)
	}
	n.sub = ch
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if n.sub == ch {
				close(ch)
				n.sub = nil
			}
		})
	}
	return ch, cancel
}
