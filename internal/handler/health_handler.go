package handler

import (
	"context"
	"net/http"
	"time"

	"go-shop-api/pkg/apierror"
)

type healthChecker interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	store   string
	checker healthChecker
}

// NewHealthHandler reports liveness. checker may be nil when the store has
// nothing to ping.
func NewHealthHandler(store string, checker healthChecker) *HealthHandler {
	return &HealthHandler{store: store, checker: checker}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.checker != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.checker.Health(ctx); err != nil {
			writeError(w, r, apierror.New("UNAVAILABLE", "store is unreachable", err.Error(), http.StatusServiceUnavailable))
			return
		}
	}

	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok", "store": h.store}, nil)
}
