package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-maintenance/internal/dashboard"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

var preferenceKeys = []string{
	models.PrefMaintenanceUpcoming,
	models.PrefMaintenanceOverdue,
	models.PrefVerificationUpcoming,
	models.PrefIncidentNew,
	models.PrefIncidentStatusUpdate,
	models.PrefDocumentExpiry,
}

// DashboardHandler serves the dashboard summary and notification feed
type DashboardHandler struct {
	service *dashboard.Service
	log     logrus.FieldLogger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service *dashboard.Service, logger logrus.FieldLogger) *DashboardHandler {
	return &DashboardHandler{service: service, log: orStandard(logger)}
}

// Stats handles GET /api/dashboard/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		serverError(w, h.log, "Failed to compute dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, stats, h.log)
}

// Notifications handles GET /api/dashboard/notifications. Preference keys may
// be switched off in the query, e.g. ?document_expiry=false.
func (h *DashboardHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	prefs, err := parsePreferences(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		serverError(w, h.log, "Failed to load fleet data", err)
		return
	}
	items := h.service.Aggregator.Notifications(snap, h.service.Today(), prefs)
	writeJSON(w, http.StatusOK, items, h.log)
}

func parsePreferences(r *http.Request) (models.NotificationPreferences, error) {
	q := r.URL.Query()
	prefs := models.NotificationPreferences{}
	for _, key := range preferenceKeys {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		on, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q for %s", raw, key)
		}
		prefs[key] = on
	}
	return prefs, nil
}
