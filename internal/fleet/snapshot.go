package fleet

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-maintenance/internal/metrics"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// Source supplies the collections a snapshot is built from.
type Source interface {
	FindVehicles(ctx context.Context) ([]models.Vehicle, error)
	FindMaintenanceEvents(ctx context.Context) ([]models.MaintenanceEvent, error)
	FindIncidents(ctx context.Context) ([]models.Incident, error)
	FindRules(ctx context.Context) ([]models.MaintenanceRule, error)
}

// Snapshot is an immutable view of the fleet taken at one point in time.
// It owns copies of every record; accessors hand out further copies, so
// nothing reachable from a Snapshot can be mutated by its callers.
type Snapshot struct {
	vehicles  []models.Vehicle
	events    []models.MaintenanceEvent
	incidents []models.Incident
	rules     []models.MaintenanceRule

	vehicleIndex       map[string]int
	eventsByVehicle    map[string][]int
	incidentsByVehicle map[string][]int
	vehicleIDs         []string

	skipped int
}

// Load reads all collections from src and returns a snapshot of them.
func Load(ctx context.Context, src Source, logger logrus.FieldLogger) (*Snapshot, error) {
	vehicles, err := src.FindVehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vehicles: %w", err)
	}
	events, err := src.FindMaintenanceEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load maintenance events: %w", err)
	}
	incidents, err := src.FindIncidents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load incidents: %w", err)
	}
	rules, err := src.FindRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	return NewSnapshot(vehicles, events, incidents, rules, logger), nil
}

// NewSnapshot copies the given records into a new snapshot. Records without
// an id, and repeated vehicle ids, are dropped and counted in Skipped.
func NewSnapshot(vehicles []models.Vehicle, events []models.MaintenanceEvent, incidents []models.Incident, rules []models.MaintenanceRule, logger logrus.FieldLogger) *Snapshot {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Snapshot{
		vehicleIndex:       make(map[string]int, len(vehicles)),
		eventsByVehicle:    map[string][]int{},
		incidentsByVehicle: map[string][]int{},
	}
	skip := func(collection, reason, id string) {
		s.skipped++
		metrics.SkippedRecords.WithLabelValues(collection, reason).Inc()
		logger.WithFields(logrus.Fields{
			"collection": collection,
			"reason":     reason,
			"id":         id,
		}).Debug("Skipping record")
	}
	seen := map[string]bool{}
	addID := func(id string) {
		if !seen[id] {
			seen[id] = true
			s.vehicleIDs = append(s.vehicleIDs, id)
		}
	}

	for _, v := range vehicles {
		if v.ID == "" {
			skip("vehicles", "missing_identity", v.Plate)
			continue
		}
		if _, dup := s.vehicleIndex[v.ID]; dup {
			skip("vehicles", "duplicate", v.ID)
			continue
		}
		s.vehicleIndex[v.ID] = len(s.vehicles)
		s.vehicles = append(s.vehicles, v.Clone())
		addID(v.ID)
	}
	// Events and incidents without a vehicle id still count; they are kept
	// out of the per-vehicle index and show up with plate "N/A".
	for _, e := range events {
		if e.ID == "" {
			skip("maintenance_events", "missing_identity", e.VehicleID)
			continue
		}
		if e.VehicleID != "" {
			s.eventsByVehicle[e.VehicleID] = append(s.eventsByVehicle[e.VehicleID], len(s.events))
			addID(e.VehicleID)
		}
		s.events = append(s.events, e.Clone())
	}
	for _, i := range incidents {
		if i.ID == "" {
			skip("incidents", "missing_identity", i.VehicleID)
			continue
		}
		if i.VehicleID != "" {
			s.incidentsByVehicle[i.VehicleID] = append(s.incidentsByVehicle[i.VehicleID], len(s.incidents))
			addID(i.VehicleID)
		}
		s.incidents = append(s.incidents, i.Clone())
	}
	for _, r := range rules {
		if r.ID == "" {
			skip("maintenance_rules", "missing_identity", r.Name)
			continue
		}
		s.rules = append(s.rules, r.Clone())
	}

	for _, idx := range s.eventsByVehicle {
		sort.SliceStable(idx, func(a, b int) bool {
			return s.events[idx[a]].MoreRecent(s.events[idx[b]])
		})
	}
	for _, idx := range s.incidentsByVehicle {
		sort.SliceStable(idx, func(a, b int) bool {
			return s.incidents[idx[a]].MoreRecent(s.incidents[idx[b]])
		})
	}
	return s
}

// Skipped returns the number of records dropped while building the snapshot.
func (s *Snapshot) Skipped() int {
	return s.skipped
}

// Vehicles returns the vehicles in source order.
func (s *Snapshot) Vehicles() []models.Vehicle {
	out := make([]models.Vehicle, len(s.vehicles))
	for i, v := range s.vehicles {
		out[i] = v.Clone()
	}
	return out
}

// Events returns every maintenance event in source order.
func (s *Snapshot) Events() []models.MaintenanceEvent {
	out := make([]models.MaintenanceEvent, len(s.events))
	for i, e := range s.events {
		out[i] = e.Clone()
	}
	return out
}

// Incidents returns every incident in source order.
func (s *Snapshot) Incidents() []models.Incident {
	out := make([]models.Incident, len(s.incidents))
	for i, inc := range s.incidents {
		out[i] = inc.Clone()
	}
	return out
}

// Rules returns every maintenance rule in source order.
func (s *Snapshot) Rules() []models.MaintenanceRule {
	out := make([]models.MaintenanceRule, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.Clone()
	}
	return out
}

// VehicleIDs lists every vehicle id the snapshot knows about: registered
// vehicles first, then ids only referenced by events or incidents.
func (s *Snapshot) VehicleIDs() []string {
	return append([]string(nil), s.vehicleIDs...)
}

// VehicleByID returns a copy of the vehicle with the given id.
func (s *Snapshot) VehicleByID(id string) (*models.Vehicle, bool) {
	i, ok := s.vehicleIndex[id]
	if !ok {
		return nil, false
	}
	v := s.vehicles[i].Clone()
	return &v, true
}

// Plate returns the plate of the vehicle, or "N/A" when it is not registered.
func (s *Snapshot) Plate(id string) string {
	if i, ok := s.vehicleIndex[id]; ok {
		return s.vehicles[i].Plate
	}
	return "N/A"
}

// EventsFor returns the vehicle's maintenance history, most recent first.
func (s *Snapshot) EventsFor(vehicleID string) []models.MaintenanceEvent {
	idx := s.eventsByVehicle[vehicleID]
	out := make([]models.MaintenanceEvent, len(idx))
	for n, i := range idx {
		out[n] = s.events[i].Clone()
	}
	return out
}

// IncidentsFor returns the vehicle's incidents, most recent first.
func (s *Snapshot) IncidentsFor(vehicleID string) []models.Incident {
	idx := s.incidentsByVehicle[vehicleID]
	out := make([]models.Incident, len(idx))
	for n, i := range idx {
		out[n] = s.incidents[i].Clone()
	}
	return out
}
