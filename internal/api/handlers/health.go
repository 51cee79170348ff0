package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether the account database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		jsonResponse(w, map[string]string{"status": "unavailable", "database": err.Error()}, http.StatusServiceUnavailable)
		return
	}
	jsonResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}
