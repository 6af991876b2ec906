package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// events - streams history changes of a session as Server-Sent Events.
func (that *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	log := that.logger.With("method", "events", "sessionID", id)

	ctx := r.Context()
	ch, unsubscribe := that.source.Subscribe(ctx, id)
	defer unsubscribe()

	if _, err := that.game.GetState(ctx, id); err != nil {
		that.writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	// the stream outlives the server write timeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("failed to clear write deadline", "error", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(that.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-ch:
			if !ok {
				log.Info("event stream dropped")
				return
			}

			data, err := json.Marshal(ev)
			if err != nil {
				log.Error("failed to marshal event", "error", err)
				continue
			}

			if _, err = fmt.Fprintf(w, "event: history\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
