package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

// Memory is an in-memory Store used in tests and when no MONGO_URI is set.
// Records keep insertion order; readers always receive copies.
type Memory struct {
	mu            sync.RWMutex
	vehicles      []models.Vehicle
	events        []models.MaintenanceEvent
	incidents     []models.Incident
	rules         []models.MaintenanceRule
	catalogs      map[models.CatalogKind][]models.CatalogItem
	catalogModels []models.ModelCatalogItem
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{catalogs: map[models.CatalogKind][]models.CatalogItem{}}
}

func (m *Memory) FindVehicles(ctx context.Context) ([]models.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Vehicle, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		out = append(out, v.Clone())
	}
	return out, nil
}

func (m *Memory) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.vehicles {
		if v.ID == id {
			c := v.Clone()
			return &c, nil
		}
	}
	return nil, fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
}

func (m *Memory) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if vehicle.ID == "" {
		vehicle.ID = uuid.New().String()
	}
	m.vehicles = append(m.vehicles, vehicle.Clone())
	return nil
}

func (m *Memory) UpdateVehicleMileage(ctx context.Context, id string, mileage int, lastUpdated string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.vehicles {
		if m.vehicles[i].ID != id {
			continue
		}
		if mileage < 0 || mileage < m.vehicles[i].CurrentMileage {
			return ErrMileageDecrease
		}
		m.vehicles[i].CurrentMileage = mileage
		m.vehicles[i].LastUpdated = lastUpdated
		return nil
	}
	return fmt.Errorf("vehicle %s: %w", id, ErrNotFound)
}

func (m *Memory) FindMaintenanceEvents(ctx context.Context) ([]models.MaintenanceEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.MaintenanceEvent, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Clone())
	}
	return out, nil
}

func (m *Memory) InsertMaintenanceEvent(ctx context.Context, event models.MaintenanceEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	m.events = append(m.events, event.Clone())
	return nil
}

func (m *Memory) FindIncidents(ctx context.Context) ([]models.Incident, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Incident, 0, len(m.incidents))
	for _, i := range m.incidents {
		out = append(out, i.Clone())
	}
	return out, nil
}

func (m *Memory) InsertIncident(ctx context.Context, incident models.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if incident.ID == "" {
		incident.ID = uuid.New().String()
	}
	m.incidents = append(m.incidents, incident.Clone())
	return nil
}

func (m *Memory) FindRules(ctx context.Context) ([]models.MaintenanceRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.MaintenanceRule, 0, len(m.rules))
	for _, r := range m.rules {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (m *Memory) InsertRule(ctx context.Context, rule models.MaintenanceRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	m.rules = append(m.rules, rule.Clone())
	return nil
}

func (m *Memory) FindCatalog(ctx context.Context, kind models.CatalogKind) ([]models.CatalogItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.CatalogItem{}, m.catalogs[kind]...), nil
}

func (m *Memory) InsertCatalogItem(ctx context.Context, kind models.CatalogKind, item models.CatalogItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	m.catalogs[kind] = append(m.catalogs[kind], item)
	return nil
}

func (m *Memory) FindModels(ctx context.Context, brandID string) ([]models.ModelCatalogItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.ModelCatalogItem{}
	for _, item := range m.catalogModels {
		if brandID == "" || item.BrandID == brandID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *Memory) InsertModel(ctx context.Context, item models.ModelCatalogItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	m.catalogModels = append(m.catalogModels, item)
	return nil
}
