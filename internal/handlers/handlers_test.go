package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"

	"github.com/ukydev/fleet-maintenance/internal/dashboard"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/fleet"
	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

var (
	testNow   = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	errBroken = errors.New("connection reset")
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int { return &i }

// seedStore builds a small fleet as of 2024-06-15:
// V1 has a service due in five days, V2 is overdue with an open incident and
// V3 has no markers and takes its due dates from the Sedán rule.
func seedStore() *db.Memory {
	ctx := context.Background()
	mem := db.NewMemory()
	_ = mem.InsertVehicle(ctx, models.Vehicle{
		ID: "V1", Plate: "AAA-001", Type: "Sedán", Status: models.VehicleOperational,
		CurrentMileage: 20000, NextServiceDate: strPtr("2024-06-20"),
	})
	_ = mem.InsertVehicle(ctx, models.Vehicle{
		ID: "V2", Plate: "AAA-002", Type: "Pickup", Status: models.VehicleIncident,
		CurrentMileage: 80000, NextServiceDate: strPtr("2024-06-01"),
		NextVerificationDate: strPtr("2024-07-01"),
	})
	_ = mem.InsertVehicle(ctx, models.Vehicle{
		ID: "V3", Plate: "AAA-003", Type: "Sedán", Status: models.VehicleOperational,
		CurrentMileage: 45000,
	})
	_ = mem.InsertMaintenanceEvent(ctx, models.MaintenanceEvent{
		ID: "E1", VehicleID: "V3", VehiclePlate: "AAA-003", Date: "2024-01-10", Mileage: 40000,
		Type: models.MaintenanceService, ServiceType: "Afinación", LastUpdated: "2024-01-10T12:00:00Z",
	})
	_ = mem.InsertMaintenanceEvent(ctx, models.MaintenanceEvent{
		ID: "E2", VehicleID: "V3", VehiclePlate: "AAA-003", Date: "2023-07-02", Mileage: 30000,
		Type: models.MaintenanceService, ServiceType: "Cambio de aceite", LastUpdated: "2023-07-02T12:00:00Z",
	})
	_ = mem.InsertIncident(ctx, models.Incident{
		ID: "I1", VehicleID: "V2", VehiclePlate: "AAA-002", Date: "2024-06-10",
		Description: "Golpe en defensa trasera", DamageLevel: models.DamageMinor,
		Status: models.IncidentOpen, LastUpdated: "2024-06-10T18:00:00Z",
	})
	_ = mem.InsertRule(ctx, models.MaintenanceRule{
		ID: "R1", Name: "Sedanes 10k", VehicleType: "Sedán",
		MileageInterval: intPtr(10000), TimeIntervalMonths: intPtr(6),
		ServiceTasks: "Cambio de aceite y filtros",
	})
	_ = mem.InsertRule(ctx, models.MaintenanceRule{
		ID: "R2", Name: "Flota completa", VehicleType: "Todos",
		MileageInterval: intPtr(15000), ServiceTasks: "Revisión general de frenos",
	})
	return mem
}

func newTestService(src fleet.Source, cache dashboard.Cache) (*dashboard.Service, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	agg := dashboard.NewAggregator(maintenance.DefaultWindows(), logger)
	svc := dashboard.NewService(src, agg, cache, nil, logger)
	svc.Now = func() time.Time { return testNow }
	return svc, hook
}

// MockStore is a mock implementation of db.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) FindVehicles(ctx context.Context) ([]models.Vehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

func (m *MockStore) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockStore) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *MockStore) UpdateVehicleMileage(ctx context.Context, id string, mileage int, lastUpdated string) error {
	args := m.Called(ctx, id, mileage, lastUpdated)
	return args.Error(0)
}

func (m *MockStore) FindMaintenanceEvents(ctx context.Context) ([]models.MaintenanceEvent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MaintenanceEvent), args.Error(1)
}

func (m *MockStore) FindIncidents(ctx context.Context) ([]models.Incident, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Incident), args.Error(1)
}

func (m *MockStore) FindRules(ctx context.Context) ([]models.MaintenanceRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MaintenanceRule), args.Error(1)
}

func (m *MockStore) InsertRule(ctx context.Context, rule models.MaintenanceRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

// MockCache is a mock implementation of dashboard.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, day string) (*dashboard.Stats, bool, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*dashboard.Stats), args.Bool(1), args.Error(2)
}

func (m *MockCache) Set(ctx context.Context, day string, stats dashboard.Stats) error {
	args := m.Called(ctx, day, stats)
	return args.Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
