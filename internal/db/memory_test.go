package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

func TestMemory_VehicleCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	next := "2024-06-01"
	require.NoError(t, m.InsertVehicle(ctx, models.Vehicle{ID: "v1", Plate: "ABC-123", NextServiceDate: &next}))

	got, err := m.FindVehicleByID(ctx, "v1")
	require.NoError(t, err)
	*got.NextServiceDate = "1999-01-01"
	got.Plate = "changed"

	again, err := m.FindVehicleByID(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "ABC-123", again.Plate)
	assert.Equal(t, "2024-06-01", *again.NextServiceDate)
}

func TestMemory_InsertGeneratesIDs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.InsertRule(ctx, models.MaintenanceRule{Name: "Servicio"}))
	require.NoError(t, m.InsertMaintenanceEvent(ctx, models.MaintenanceEvent{VehicleID: "v1"}))

	rules, err := m.FindRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.NotEmpty(t, rules[0].ID)

	events, err := m.FindMaintenanceEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].ID)
}

func TestMemory_UpdateVehicleMileage(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.InsertVehicle(ctx, models.Vehicle{ID: "v1", CurrentMileage: 50000}))

	t.Run("increase", func(t *testing.T) {
		err := m.UpdateVehicleMileage(ctx, "v1", 51000, "2024-05-01T10:00:00Z")
		require.NoError(t, err)
		v, _ := m.FindVehicleByID(ctx, "v1")
		assert.Equal(t, 51000, v.CurrentMileage)
		assert.Equal(t, "2024-05-01T10:00:00Z", v.LastUpdated)
	})

	t.Run("same value is allowed", func(t *testing.T) {
		assert.NoError(t, m.UpdateVehicleMileage(ctx, "v1", 51000, "2024-05-02T10:00:00Z"))
	})

	t.Run("decrease rejected", func(t *testing.T) {
		err := m.UpdateVehicleMileage(ctx, "v1", 40000, "2024-05-03T10:00:00Z")
		assert.True(t, errors.Is(err, ErrMileageDecrease))
		v, _ := m.FindVehicleByID(ctx, "v1")
		assert.Equal(t, 51000, v.CurrentMileage)
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		err := m.UpdateVehicleMileage(ctx, "nope", 1, "")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestMemory_Catalogs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.InsertCatalogItem(ctx, models.CatalogBrands, models.CatalogItem{ID: "b1", Name: "Nissan"}))
	require.NoError(t, m.InsertCatalogItem(ctx, models.CatalogWorkshops, models.CatalogItem{Name: "Taller Centro"}))
	require.NoError(t, m.InsertModel(ctx, models.ModelCatalogItem{Name: "Versa", BrandID: "b1"}))
	require.NoError(t, m.InsertModel(ctx, models.ModelCatalogItem{Name: "Hilux", BrandID: "b2"}))

	brands, err := m.FindCatalog(ctx, models.CatalogBrands)
	require.NoError(t, err)
	assert.Len(t, brands, 1)

	nissan, err := m.FindModels(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, nissan, 1)
	assert.Equal(t, "Versa", nissan[0].Name)

	all, err := m.FindModels(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
