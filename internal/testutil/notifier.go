package testutil

import (
	"sync"

	"ordersconsole/internal/notification"
)

type Note struct {
	Message  string
	Severity notification.Severity
}

// Notifier records every toast instead of displaying it.
type Notifier struct {
	mu    sync.Mutex
	notes []Note
}

func (n *Notifier) Notify(message string, severity notification.Severity) {
	n.mu.Lock()
	n.notes = append(n.notes, Note{Message: message, Severity: severity})
	n.mu.Unlock()
}

func (n *Notifier) All() []Note {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Note, len(n.notes))
	copy(out, n.notes)
	return out
}

func (n *Notifier) Last() (Note, bool) {
	notes := n.All()
	if len(notes) == 0 {
		return Note{}, false
	}
	return notes[len(notes)-1], true
}

func (n *Notifier) Count(severity notification.Severity) int {
	c := 0
	for _, note := range n.All() {
		if note.Severity == severity {
			c++
		}
	}
	return c
}
