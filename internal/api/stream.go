package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const streamKeepAlive = 25 * time.Second

// handleStream pushes the household's row changes as server-sent events so
// open clients can refresh without polling.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	hh := s.household(w, r)
	if hh == nil {
		return
	}
	if s.hub == nil {
		s.respondError(w, http.StatusServiceUnavailable, "change stream is not enabled")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub := s.hub.Subscribe(hh.ID)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case c, ok := <-sub.C:
			if !ok {
				return
			}
			data, err := json.Marshal(c)
			if err != nil {
				s.logger.WithError(err).Error("failed to encode change")
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", c.Table, data)
			flusher.Flush()
		}
	}
}
