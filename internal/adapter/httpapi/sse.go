package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/evertl/reelpilot/internal/domain"
	"github.com/evertl/reelpilot/internal/service"
)

// eventsHandler streams job progress for one folder as server-sent
// events. The stream closes itself once a terminal event is delivered, or
// when the client hangs up.
func eventsHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		folder := r.URL.Query().Get("folder")
		if folder == "" {
			WriteError(w, http.StatusBadRequest, "folder is required", "BAD_REQUEST")
			return
		}
		// Progress is keyed by the cleaned path.
		folder = filepath.Clean(folder)
		flusher, ok := w.(http.Flusher)
		if !ok {
			WriteError(w, http.StatusInternalServerError, "streaming unsupported", "INTERNAL_ERROR")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		ch := cfg.EventBus.Subscribe(folder)
		defer cfg.EventBus.Unsubscribe(folder, ch)

		// Snapshot of whatever is known right now, so a late subscriber is
		// not left staring at silence.
		if rec, err := cfg.Pipeline.IngestStatus(folder); err == nil {
			writeSSE(w, flusher, "progress", recordEvent(rec))
		}
		if rec, err := cfg.Pipeline.BuildStatus(folder); err == nil {
			writeSSE(w, flusher, "progress", recordEvent(rec))
		}

		ctx := r.Context()
		keepAlive := time.NewTicker(15 * time.Second)
		defer keepAlive.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-keepAlive.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				flusher.Flush()
			case event, open := <-ch:
				if !open {
					return
				}
				writeSSE(w, flusher, "progress", event)
				if event.State.Terminal() {
					return
				}
			}
		}
	}
}

func recordEvent(rec *domain.JobRecord) service.Event {
	return service.Event{
		Kind:      rec.Kind,
		State:     rec.State,
		Step:      rec.CurrentStep,
		File:      rec.CurrentFile,
		Completed: rec.Completed,
		Total:     rec.Total,
		Message:   rec.Result,
	}
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	flusher.Flush()
}
