package dashboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/fleet-maintenance/internal/fleet"
	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

var today = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

func day(offset int) string {
	return models.FormatDate(today.AddDate(0, 0, offset))
}

func stamp(hoursAgo int) string {
	return today.Add(-time.Duration(hoursAgo) * time.Hour).Format(time.RFC3339)
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func sampleSnapshot() *fleet.Snapshot {
	vehicles := []models.Vehicle{
		{ID: "V1", Plate: "AAA-001", Status: models.VehicleOperational, CurrentMileage: 52000, NextServiceMileage: intPtr(50000)},
		{ID: "V2", Plate: "AAA-002", Status: models.VehicleInWorkshop, NextServiceDate: strPtr(day(10))},
		{ID: "V3", Plate: "AAA-003", Status: models.VehicleIncident, NextVerificationDate: strPtr(day(20))},
		{ID: "V4", Plate: "AAA-004", Status: models.VehicleDecommissioned, NextServiceDate: strPtr(day(120))},
	}
	events := []models.MaintenanceEvent{
		{ID: "m1", VehicleID: "V4", Type: models.MaintenanceService, Date: day(-200), Mileage: 10000, LastUpdated: stamp(1)},
		{ID: "m2", VehicleID: "V1", Type: models.MaintenanceService, Date: day(-90), Mileage: 40000, LastUpdated: stamp(3)},
		{ID: "m3", VehicleID: "GHOST", Type: models.MaintenanceVerification, Date: day(5), LastUpdated: stamp(5)},
	}
	incidents := []models.Incident{
		{ID: "I1", VehicleID: "V3", Date: day(-3), Status: models.IncidentClosed, Description: "Golpe leve", LastUpdated: stamp(2)},
		{ID: "I2", VehicleID: "V3", Date: day(-1), Status: models.IncidentOpen, Description: "Choque", LastUpdated: stamp(4)},
	}
	return fleet.NewSnapshot(vehicles, events, incidents, nil, nil)
}

func TestCompute(t *testing.T) {
	agg := NewAggregator(maintenance.DefaultWindows(), nil)
	stats := agg.Compute(sampleSnapshot(), today)

	assert.Equal(t, "2024-06-15", stats.Date)
	assert.Equal(t, 1, stats.UpcomingServices, "V2 due in 10 days")
	assert.Equal(t, 1, stats.OverdueServices, "V1 passed its mileage; V4 has a future date")
	assert.Equal(t, 2, stats.UpcomingVerifications, "V3 and the orphan GHOST")
	assert.Equal(t, 1, stats.ActiveIncidents)
	assert.Equal(t, StatusCounts{Operational: 1, InWorkshop: 1, Incident: 1, Decommissioned: 1}, stats.StatusCounts)
	assert.Equal(t, 0, stats.SkippedRecords)

	require.Len(t, stats.RecentActivity, 5)
	var ids []string
	for _, a := range stats.RecentActivity {
		ids = append(ids, a.RecordID)
	}
	assert.Equal(t, []string{"m1", "I1", "m2", "I2", "m3"}, ids)

	first := stats.RecentActivity[0]
	assert.Equal(t, "AAA-004", first.VehiclePlate)
	assert.Equal(t, "Servicio Realizado: AAA-004", first.Title)
	assert.Equal(t, models.SeverityInfo, first.Severity)

	ghost := stats.RecentActivity[4]
	assert.Equal(t, "N/A", ghost.VehiclePlate)
	assert.Equal(t, "Verificación Programado: N/A", ghost.Title)
	assert.Equal(t, models.NotificationVerification, ghost.Type)

	open := stats.RecentActivity[3]
	assert.Equal(t, models.SeverityWarning, open.Severity)
	assert.Equal(t, "Siniestro Abierto: AAA-003", open.Title)
}

func TestCompute_MixedFleet(t *testing.T) {
	snap := fleet.NewSnapshot(
		[]models.Vehicle{
			{ID: "V1", Plate: "P1", CurrentMileage: 52000, NextServiceMileage: intPtr(50000)},
			{ID: "V2", Plate: "P2", NextServiceDate: strPtr(day(10))},
		},
		nil,
		[]models.Incident{
			{ID: "I1", VehicleID: "V1", Status: models.IncidentClosed},
			{ID: "I2", VehicleID: "V2", Status: models.IncidentOpen},
		},
		nil, nil,
	)
	agg := NewAggregator(maintenance.DefaultWindows(), nil)
	stats := agg.Compute(snap, today)

	assert.Equal(t, 1, stats.OverdueServices)
	assert.Equal(t, 1, stats.UpcomingServices)
	assert.Equal(t, 1, stats.ActiveIncidents)

	due := agg.VehicleStatuses(snap, today, FilterAll)
	require.Len(t, due, 2)
	assert.True(t, due[0].Due.ServiceOverdue)
	assert.True(t, due[1].Due.ServiceUpcoming)
	assert.False(t, due[1].Due.ServiceOverdue)
}

func TestCompute_Empty(t *testing.T) {
	agg := NewAggregator(maintenance.DefaultWindows(), nil)
	stats := agg.Compute(fleet.NewSnapshot(nil, nil, nil, nil, nil), today)

	assert.Zero(t, stats.UpcomingServices)
	assert.Zero(t, stats.OverdueServices)
	assert.Zero(t, stats.UpcomingVerifications)
	assert.Zero(t, stats.ActiveIncidents)
	assert.NotNil(t, stats.RecentActivity)
	assert.Empty(t, stats.RecentActivity)
}

func TestCompute_Idempotent(t *testing.T) {
	agg := NewAggregator(maintenance.DefaultWindows(), nil)
	snap := sampleSnapshot()
	first := agg.Compute(snap, today)
	second := agg.Compute(snap, today)
	assert.Equal(t, first, second)
}

func TestCompute_RecentActivityOrderingAndTruncation(t *testing.T) {
	// lastUpdated = T-1, T-3, T-5, T-2, T-4 across two vehicles
	events := []models.MaintenanceEvent{
		{ID: "a", VehicleID: "V1", Date: day(-30), LastUpdated: stamp(1)},
		{ID: "b", VehicleID: "V2", Date: day(-30), LastUpdated: stamp(3)},
		{ID: "c", VehicleID: "V1", Date: day(-30), LastUpdated: stamp(5)},
	}
	incidents := []models.Incident{
		{ID: "d", VehicleID: "V2", Date: day(-30), Status: models.IncidentOpen, LastUpdated: stamp(2)},
		{ID: "e", VehicleID: "V1", Date: day(-30), Status: models.IncidentOpen, LastUpdated: stamp(4)},
	}
	vehicles := []models.Vehicle{{ID: "V1", Plate: "P1"}, {ID: "V2", Plate: "P2"}}
	agg := NewAggregator(maintenance.DefaultWindows(), nil)

	stats := agg.Compute(fleet.NewSnapshot(vehicles, events, incidents, nil, nil), today)
	assert.Equal(t, []string{"a", "d", "b", "e", "c"}, recordIDs(stats.RecentActivity))

	// Add three more; only the five newest remain.
	more := append(events,
		models.MaintenanceEvent{ID: "f", VehicleID: "V1", Date: day(-30), LastUpdated: stamp(0)},
		models.MaintenanceEvent{ID: "g", VehicleID: "V2", Date: day(-30), LastUpdated: stamp(10)},
		models.MaintenanceEvent{ID: "h", VehicleID: "V2", Date: "2024-06-14"}, // no lastUpdated: falls back to date (T-24)
	)
	stats = agg.Compute(fleet.NewSnapshot(vehicles, more, incidents, nil, nil), today)
	assert.Equal(t, []string{"f", "a", "d", "b", "e"}, recordIDs(stats.RecentActivity))
}

func TestCompute_ActivityTieBreak(t *testing.T) {
	same := stamp(2)
	snap := fleet.NewSnapshot(nil,
		[]models.MaintenanceEvent{
			{ID: "z", VehicleID: "V1", LastUpdated: same},
			{ID: "y", VehicleID: "V1", LastUpdated: same},
			{ID: "undated", VehicleID: "V1"},
		},
		[]models.Incident{{ID: "a", VehicleID: "V1", LastUpdated: same}},
		nil, nil,
	)
	agg := NewAggregator(maintenance.DefaultWindows(), nil)
	stats := agg.Compute(snap, today)
	assert.Equal(t, []string{"y", "z", "a", "undated"}, recordIDs(stats.RecentActivity))
}

func TestCompute_CountsSkippedRecords(t *testing.T) {
	snap := fleet.NewSnapshot(
		[]models.Vehicle{{Plate: "NO-ID"}},
		[]models.MaintenanceEvent{{VehicleID: "V1"}},
		nil, nil, nil,
	)
	stats := NewAggregator(maintenance.DefaultWindows(), nil).Compute(snap, today)
	assert.Equal(t, 2, stats.SkippedRecords)
}

func TestCompute_IncidentWithoutVehicle(t *testing.T) {
	snap := fleet.NewSnapshot(
		nil,
		nil,
		[]models.Incident{{ID: "I1", Status: models.IncidentOpen, Date: day(-1), Description: "Choque en patio"}},
		nil, nil,
	)
	stats := NewAggregator(maintenance.DefaultWindows(), nil).Compute(snap, today)

	assert.Equal(t, 1, stats.ActiveIncidents)
	assert.Equal(t, 0, stats.SkippedRecords)
	require.Len(t, stats.RecentActivity, 1)
	assert.Equal(t, "I1", stats.RecentActivity[0].RecordID)
	assert.Equal(t, "N/A", stats.RecentActivity[0].VehiclePlate)
}

func TestCompute_UsesRules(t *testing.T) {
	snap := fleet.NewSnapshot(
		[]models.Vehicle{{ID: "V1", Plate: "P1", Type: "Pickup", CurrentMileage: 61000}},
		[]models.MaintenanceEvent{{ID: "e1", VehicleID: "V1", Type: models.MaintenanceService, Date: day(-20), Mileage: 50000}},
		nil,
		[]models.MaintenanceRule{{ID: "r1", Name: "Pickups 10k", VehicleType: "Pickup", MileageInterval: intPtr(10000)}},
		nil,
	)
	agg := NewAggregator(maintenance.DefaultWindows(), nil)
	stats := agg.Compute(snap, today)
	assert.Equal(t, 1, stats.OverdueServices)

	due, ok := agg.VehicleDue(snap, "V1", today)
	require.True(t, ok)
	assert.Equal(t, maintenance.SourceRule, due.Due.Source)
	assert.Equal(t, []string{"Pickups 10k"}, due.Rules)
	require.NotNil(t, due.Due.NextServiceMileage)
	assert.Equal(t, 60000, *due.Due.NextServiceMileage)
}

func TestVehicleStatuses_Filters(t *testing.T) {
	agg := NewAggregator(maintenance.DefaultWindows(), nil)
	snap := sampleSnapshot()

	tests := []struct {
		filter Filter
		want   []string
	}{
		{FilterAll, []string{"V1", "V2", "V3", "V4", "GHOST"}},
		{FilterUpcomingServices, []string{"V2"}},
		{FilterOverdueServices, []string{"V1"}},
		{FilterUpcomingVerifications, []string{"V3", "GHOST"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("filter %q", tt.filter), func(t *testing.T) {
			var ids []string
			for _, d := range agg.VehicleStatuses(snap, today, tt.filter) {
				ids = append(ids, d.VehicleID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestVehicleDue_Unknown(t *testing.T) {
	agg := NewAggregator(maintenance.DefaultWindows(), nil)
	snap := sampleSnapshot()

	_, ok := agg.VehicleDue(snap, "nope", today)
	assert.False(t, ok)

	ghost, ok := agg.VehicleDue(snap, "GHOST", today)
	require.True(t, ok)
	assert.False(t, ghost.Registered)
	assert.Equal(t, "N/A", ghost.VehiclePlate)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("overdue_services")
	require.NoError(t, err)
	assert.Equal(t, FilterOverdueServices, f)

	f, err = ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	_, err = ParseFilter("everything")
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func recordIDs(items []ActivityItem) []string {
	out := []string{}
	for _, i := range items {
		out = append(out, i.RecordID)
	}
	return out
}
