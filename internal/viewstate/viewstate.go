// Package viewstate holds the state primitives shared by the view-controllers.
package viewstate

import "time"

type Status string

const (
	Idle    Status = "idle"
	Loading Status = "loading"
	Loaded  Status = "loaded"
	Empty   Status = "empty"
)

// ListStatus derives the displayed status of a list page. Empty is Loaded
// with no rows and gets its own message instead of a blank table.
func ListStatus(loading bool, rows int) Status {
	switch {
	case loading:
		return Loading
	case rows == 0:
		return Empty
	default:
		return Loaded
	}
}

// Lifecycle tracks whether a view is mounted and hands out tokens so that a
// fetch started before Unmount cannot write into the discarded view. It is
// not synchronized; the owning controller guards it with its own mutex.
type Lifecycle struct {
	gen     uint64
	mounted bool
}

// Mount starts a new generation and returns its token.
func (l *Lifecycle) Mount() uint64 {
	l.gen++
	l.mounted = true
	return l.gen
}

func (l *Lifecycle) Unmount() {
	l.gen++
	l.mounted = false
}

func (l *Lifecycle) Mounted() bool {
	return l.mounted
}

// Token is the current generation, used by reloads within the same mount.
func (l *Lifecycle) Token() uint64 {
	return l.gen
}

// Valid reports whether results fetched under token may still be applied.
func (l *Lifecycle) Valid(token uint64) bool {
	return l.mounted && token == l.gen
}

// Await waits for done for at most d. A nil channel counts as done.
func Await(done <-chan struct{}, d time.Duration) bool {
	if done == nil {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}
