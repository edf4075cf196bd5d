package db

import (
	"context"
	"errors"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

var (
	// ErrNotFound is returned when a record with the requested id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrMileageDecrease is returned when a mileage update would lower the odometer.
	ErrMileageDecrease = errors.New("mileage cannot decrease")
)

// VehicleCollection defines the interface for vehicle data operations.
type VehicleCollection interface {
	FindVehicles(ctx context.Context) ([]models.Vehicle, error)
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) error
	UpdateVehicleMileage(ctx context.Context, id string, mileage int, lastUpdated string) error
}

// MaintenanceCollection defines the interface for maintenance event operations.
type MaintenanceCollection interface {
	FindMaintenanceEvents(ctx context.Context) ([]models.MaintenanceEvent, error)
	InsertMaintenanceEvent(ctx context.Context, event models.MaintenanceEvent) error
}

// IncidentCollection defines the interface for incident operations.
type IncidentCollection interface {
	FindIncidents(ctx context.Context) ([]models.Incident, error)
	InsertIncident(ctx context.Context, incident models.Incident) error
}

// RuleCollection defines the interface for maintenance rule operations.
type RuleCollection interface {
	FindRules(ctx context.Context) ([]models.MaintenanceRule, error)
	InsertRule(ctx context.Context, rule models.MaintenanceRule) error
}

// CatalogCollection defines the interface for the master catalogs.
type CatalogCollection interface {
	FindCatalog(ctx context.Context, kind models.CatalogKind) ([]models.CatalogItem, error)
	InsertCatalogItem(ctx context.Context, kind models.CatalogKind, item models.CatalogItem) error
	FindModels(ctx context.Context, brandID string) ([]models.ModelCatalogItem, error)
	InsertModel(ctx context.Context, item models.ModelCatalogItem) error
}

// Store groups every collection the service reads and writes.
type Store interface {
	VehicleCollection
	MaintenanceCollection
	IncidentCollection
	RuleCollection
	CatalogCollection
}
