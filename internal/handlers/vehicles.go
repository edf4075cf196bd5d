package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-maintenance/internal/dashboard"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// VehicleHandler serves per-vehicle due status, rules and history
type VehicleHandler struct {
	service  *dashboard.Service
	vehicles db.VehicleCollection
	log      logrus.FieldLogger
}

// NewVehicleHandler creates a new vehicle handler
func NewVehicleHandler(service *dashboard.Service, vehicles db.VehicleCollection, logger logrus.FieldLogger) *VehicleHandler {
	return &VehicleHandler{service: service, vehicles: vehicles, log: orStandard(logger)}
}

// Markers are projected next-service markers
type Markers struct {
	NextServiceMileage *int     `json:"nextServiceMileage,omitempty"`
	NextServiceDate    string   `json:"nextServiceDate,omitempty"`
	RuleIDs            []string `json:"ruleIds,omitempty"`
}

// RuleProjection is one applicable rule and the markers it yields
type RuleProjection struct {
	Rule models.MaintenanceRule `json:"rule"`
	Markers
}

// VehicleRules is the response of GET /api/vehicles/{id}/rules
type VehicleRules struct {
	VehicleID string           `json:"vehicleId"`
	Rules     []RuleProjection `json:"rules"`
	Effective Markers          `json:"effective"`
}

// VehicleHistory is the response of GET /api/vehicles/{id}/history
type VehicleHistory struct {
	VehicleID    string                    `json:"vehicleId"`
	VehiclePlate string                    `json:"vehiclePlate"`
	Events       []models.MaintenanceEvent `json:"events"`
	Incidents    []models.Incident         `json:"incidents"`
}

// MileageUpdate is the body of PATCH /api/vehicles/{id}/mileage
type MileageUpdate struct {
	Mileage *int `json:"mileage"`
}

// DueList handles GET /api/vehicles/due?filter=
func (h *VehicleHandler) DueList(w http.ResponseWriter, r *http.Request) {
	filter, err := dashboard.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		serverError(w, h.log, "Failed to load fleet data", err)
		return
	}
	writeJSON(w, http.StatusOK, h.service.Aggregator.VehicleStatuses(snap, h.service.Today(), filter), h.log)
}

// Due handles GET /api/vehicles/{id}/due
func (h *VehicleHandler) Due(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		serverError(w, h.log, "Failed to load fleet data", err)
		return
	}

	due, ok := h.service.Aggregator.VehicleDue(snap, id, h.service.Today())
	if !ok {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, due, h.log)
}

// Rules handles GET /api/vehicles/{id}/rules
func (h *VehicleHandler) Rules(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		serverError(w, h.log, "Failed to load fleet data", err)
		return
	}

	vehicle, ok := snap.VehicleByID(id)
	if !ok {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}

	history := snap.EventsFor(id)
	resp := VehicleRules{VehicleID: id, Rules: []RuleProjection{}}
	var projections []maintenance.Projection
	for _, rule := range maintenance.MatchRules(snap.Rules(), *vehicle) {
		p := maintenance.Project(rule, history)
		projections = append(projections, p)
		resp.Rules = append(resp.Rules, RuleProjection{Rule: rule, Markers: toMarkers(p)})
	}
	resp.Effective = toMarkers(maintenance.Tightest(projections))
	writeJSON(w, http.StatusOK, resp, h.log)
}

func toMarkers(p maintenance.Projection) Markers {
	out := Markers{NextServiceMileage: p.Mileage, RuleIDs: p.Rules}
	if p.Date != nil {
		out.NextServiceDate = models.FormatDate(*p.Date)
	}
	return out
}

// History handles GET /api/vehicles/{id}/history
func (h *VehicleHandler) History(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		serverError(w, h.log, "Failed to load fleet data", err)
		return
	}

	_, registered := snap.VehicleByID(id)
	events := snap.EventsFor(id)
	incidents := snap.IncidentsFor(id)
	if !registered && len(events) == 0 && len(incidents) == 0 {
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	}
	if events == nil {
		events = []models.MaintenanceEvent{}
	}
	if incidents == nil {
		incidents = []models.Incident{}
	}

	writeJSON(w, http.StatusOK, VehicleHistory{
		VehicleID:    id,
		VehiclePlate: snap.Plate(id),
		Events:       events,
		Incidents:    incidents,
	}, h.log)
}

// UpdateMileage handles PATCH /api/vehicles/{id}/mileage. The odometer may
// only move forward.
func (h *VehicleHandler) UpdateMileage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req MileageUpdate
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Mileage == nil {
		http.Error(w, "mileage is required", http.StatusBadRequest)
		return
	}

	lastUpdated := h.service.Now().UTC().Format(time.RFC3339)
	err = h.vehicles.UpdateVehicleMileage(r.Context(), id, *req.Mileage, lastUpdated)
	switch {
	case errors.Is(err, db.ErrMileageDecrease):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, db.ErrNotFound):
		http.Error(w, "Vehicle not found", http.StatusNotFound)
		return
	case err != nil:
		serverError(w, h.log, "Failed to update mileage", err)
		return
	}

	h.service.Invalidate(r.Context())
	h.log.WithFields(logrus.Fields{"vehicle_id": id, "mileage": *req.Mileage}).Info("Vehicle mileage updated")

	vehicle, err := h.vehicles.FindVehicleByID(r.Context(), id)
	if err != nil {
		serverError(w, h.log, "Failed to reload vehicle", err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle, h.log)
}
