package dashboard

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// MockCache is a mock implementation of Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, day string) (*Stats, bool, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*Stats), args.Bool(1), args.Error(2)
}

func (m *MockCache) Set(ctx context.Context, day string, stats Stats) error {
	args := m.Called(ctx, day, stats)
	return args.Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockPublisher is a mock implementation of Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, items []models.NotificationItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func newTestService(t *testing.T, cache Cache, pub Publisher) *Service {
	t.Helper()
	ctx := context.Background()
	store := db.NewMemory()
	require.NoError(t, store.InsertVehicle(ctx, models.Vehicle{ID: "V1", Plate: "AAA-001", CurrentMileage: 52000, NextServiceMileage: intPtr(50000)}))
	require.NoError(t, store.InsertIncident(ctx, models.Incident{ID: "I1", VehicleID: "V1", Status: models.IncidentOpen}))

	svc := NewService(store, NewAggregator(maintenance.DefaultWindows(), nil), cache, pub, nil)
	svc.Now = func() time.Time { return today.Add(9 * time.Hour) }
	return svc
}

func TestService_StatsCacheMiss(t *testing.T) {
	cache := new(MockCache)
	pub := new(MockPublisher)
	cache.On("Get", mock.Anything, "2024-06-15").Return(nil, false, nil)
	cache.On("Set", mock.Anything, "2024-06-15", mock.AnythingOfType("dashboard.Stats")).Return(nil)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(items []models.NotificationItem) bool {
		return len(items) == 2
	})).Return(nil)

	svc := newTestService(t, cache, pub)
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.OverdueServices)
	assert.Equal(t, 1, stats.ActiveIncidents)

	cache.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestService_StatsCacheHit(t *testing.T) {
	cache := new(MockCache)
	cached := &Stats{Date: "2024-06-15", OverdueServices: 42}
	cache.On("Get", mock.Anything, "2024-06-15").Return(cached, true, nil)

	svc := newTestService(t, cache, nil)
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, stats.OverdueServices)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_CacheAndPublishFailuresAreNotFatal(t *testing.T) {
	cache := new(MockCache)
	pub := new(MockPublisher)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, false, errors.New("redis down"))
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))
	cache.On("Invalidate", mock.Anything).Return(errors.New("redis down"))
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	svc := newTestService(t, cache, pub)
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.OverdueServices)
	svc.Invalidate(context.Background())
	cache.AssertExpectations(t)
}

func TestService_NilCacheDefaultsToNop(t *testing.T) {
	svc := newTestService(t, nil, nil)
	assert.IsType(t, NopCache{}, svc.Cache)
	_, err := svc.Stats(context.Background())
	assert.NoError(t, err)
}

func TestNewRedisCache_BadURL(t *testing.T) {
	_, err := NewRedisCache("not-a-redis-url", time.Minute)
	assert.Error(t, err)
}

// Integration test (requires running Redis)
func TestRedisCache_Integration(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set, skipping integration test")
		return
	}
	cache, err := NewRedisCache(url, time.Minute)
	require.NoError(t, err)
	defer cache.Close()
	ctx := context.Background()
	if err := cache.Ping(ctx); err != nil {
		t.Skipf("failed to connect: %v, skipping integration test", err)
		return
	}

	require.NoError(t, cache.Invalidate(ctx))
	_, ok, err := cache.Get(ctx, "2024-06-15")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "2024-06-15", Stats{Date: "2024-06-15", ActiveIncidents: 3}))
	got, ok, err := cache.Get(ctx, "2024-06-15")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got.ActiveIncidents)

	require.NoError(t, cache.Invalidate(ctx))
	_, ok, _ = cache.Get(ctx, "2024-06-15")
	assert.False(t, ok)
}
