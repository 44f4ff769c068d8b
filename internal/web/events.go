package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"ordersconsole/internal/notification"
)

const keepAliveEvery = 20 * time.Second

type toastEvent struct {
	Seq      uint64                `json:"seq"`
	Message  string                `json:"message"`
	Severity notification.Severity `json:"severity"`
	TTL      int64                 `json:"ttl"`
}

// Events streams the session's toasts as server-sent events. lookup returns
// the notifier of the requesting browser.
func Events(lookup func(*http.Request) (*notification.Notifier, bool), logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notifier, ok := lookup(r)
		if !ok {
			http.Error(w, "no session", http.StatusBadRequest)
			return
		}

		rc := http.NewResponseController(w)
		// The stream outlives the server's write timeout.
		if err := rc.SetWriteDeadline(time.Time{}); err != nil {
			logger.Debug("clearing write deadline", zap.Error(err))
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		if err := rc.Flush(); err != nil {
			logger.Warn("event stream not supported", zap.Error(err))
			return
		}

		notes, cancel := notifier.Subscribe()
		defer cancel()

		ticker := time.NewTicker(keepAliveEvery)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
			case n, open := <-notes:
				if !open {
					// Another tab of the same browser took over the stream.
					return
				}
				data, err := json.Marshal(toastEvent{
					Seq:      n.Seq,
					Message:  n.Message,
					Severity: n.Severity,
					TTL:      notifier.TTL().Milliseconds(),
				})
				if err != nil {
					logger.Error("encoding toast", zap.Error(err))
					continue
				}
				if _, err := fmt.Fprintf(w, "event: toast\ndata: %s\n\n", data); err != nil {
					return
				}
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
