// ABOUTME: Server-sent events endpoint streaming live tool invocations
// ABOUTME: Subscribes to the broadcaster and writes SSE frames per event

package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/2389/toolbelt/internal/events"
)

// handleEvents streams tool invocation events as server-sent events.
// Each invocation produces a "started" and a "completed" frame. The
// stream stays open until the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// Check streaming support before sending (fail fast)
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.logger.Error("streaming not supported")
		s.sendJSONError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	eventCh, subID := s.broadcaster.Subscribe(r.Context())
	s.logger.Debug("event stream opened", "subscriber_id", subID)

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	s.writeSSEEvent(w, "connected", map[string]string{"subscriber_id": subID})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("event stream closed", "subscriber_id", subID)
			return
		case ev, open := <-eventCh:
			if !open {
				return
			}
			s.writeSSEEvent(w, string(ev.Phase), eventPayload(ev))
			flusher.Flush()
		}
	}
}

// eventPayload shapes a broadcast event for the wire. Started frames
// carry only identity; completed frames add the outcome.
func eventPayload(ev events.Event) map[string]any {
	payload := map[string]any{
		"id":   ev.ID,
		"tool": ev.Tool,
		"at":   ev.At.Format(time.RFC3339),
	}
	if ev.Phase == events.PhaseCompleted {
		payload["success"] = ev.Success
		payload["elapsed_ms"] = ev.Duration.Milliseconds()
		if ev.Error != "" {
			payload["error"] = ev.Error
		}
	}
	return payload
}

// writeSSEEvent writes a single SSE event to the response writer.
func (s *Server) writeSSEEvent(w http.ResponseWriter, event string, data any) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("failed to marshal SSE data", "error", err)
		return
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", dataJSON)
}
