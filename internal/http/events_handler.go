package http

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/events"
)

const eventBuffer = 64

type EventsHandler struct {
	source    EventSource
	keepAlive time.Duration
}

func NewEventsHandler(source EventSource, keepAlive time.Duration) *EventsHandler {
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	return &EventsHandler{source: source, keepAlive: keepAlive}
}

// GET /api/v1/events
//
// Streams bus events as server-sent events. A client that falls more than
// eventBuffer events behind loses the overflow.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming not supported")
		return
	}

	ch := make(chan events.Event, eventBuffer)
	unsubscribe := h.source.Subscribe(func(ev events.Event) {
		select {
		case ch <- ev:
		default:
			log.Printf("request %s: event stream full, dropping event #%d", getRequestID(r.Context()), ev.Seq)
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev := <-ch:
			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("failed to encode event #%d: %v", ev.Seq, err)
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", ev.Seq, ev.Topic, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
