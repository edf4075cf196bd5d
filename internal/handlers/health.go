package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Check is a named dependency probe used by the health endpoint
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// HealthHandler reports whether the service and its backends are reachable
type HealthHandler struct {
	checks  []Check
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewHealthHandler creates a health handler running checks on each request
func NewHealthHandler(logger logrus.FieldLogger, checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second, log: orStandard(logger)}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	resp := map[string]string{"status": "ok"}
	for _, c := range h.checks {
		if err := c.Ping(ctx); err != nil {
			h.log.WithError(err).WithField("check", c.Name).Warn("Health check failed")
			resp[c.Name] = "unavailable"
			resp["status"] = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp[c.Name] = "ok"
	}
	writeJSON(w, status, resp, h.log)
}
