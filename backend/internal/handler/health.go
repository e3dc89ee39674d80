package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Serubin/AJD-Site/shared/logger"
)

// Health is a liveness probe endpoint.
// Returns 200 OK if the server is running.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Ready is a readiness probe endpoint.
// Returns 200 OK if the record store answers a one row list.
// Returns 503 Service Unavailable otherwise, including when no store is configured.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		logger.Log.Warn("readiness probe failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("record store unavailable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
