package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

func TestRuleHandler_List(t *testing.T) {
	mem := seedStore()
	svc, _ := newTestService(mem, nil)
	handler := NewRuleHandler(mem, svc, nil)

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest("GET", "/api/rules", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var rules []models.MaintenanceRule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rules))
	require.Len(t, rules, 2)
	assert.Equal(t, "Sedanes 10k", rules[0].Name)
}

func TestRuleHandler_List_Empty(t *testing.T) {
	store := new(MockStore)
	store.On("FindRules", mock.Anything).Return(nil, nil)
	svc, _ := newTestService(store, nil)
	handler := NewRuleHandler(store, svc, nil)

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest("GET", "/api/rules", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestRuleHandler_List_StoreError(t *testing.T) {
	store := new(MockStore)
	store.On("FindRules", mock.Anything).Return(nil, errBroken)
	svc, _ := newTestService(store, nil)
	handler := NewRuleHandler(store, svc, nil)

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest("GET", "/api/rules", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRuleHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "valid mileage rule",
			body:       `{"name":"Pickups 20k","vehicleType":"Pickup","mileageInterval":20000,"serviceTasks":"Cambio de aceite y filtros"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "valid assigned rule",
			body:       `{"name":"Unidad 3","assignedVehicleIds":["V3"],"serviceTasks":"Revisión de suspensión"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "short name",
			body:       `{"name":"ab","mileageInterval":1000,"serviceTasks":"Cambio de aceite"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "short tasks",
			body:       `{"name":"Regla corta","mileageInterval":1000,"serviceTasks":"aceite"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no interval nor vehicles",
			body:       `{"name":"Sin alcance","serviceTasks":"Revisión general"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid json",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := seedStore()
			cache := new(MockCache)
			cache.On("Invalidate", mock.Anything).Return(nil).Maybe()
			svc, _ := newTestService(mem, cache)
			handler := NewRuleHandler(mem, svc, nil)

			w := httptest.NewRecorder()
			handler.Create(w, httptest.NewRequest("POST", "/api/rules", bytes.NewBufferString(tt.body)))
			require.Equal(t, tt.wantStatus, w.Code)

			stored, err := mem.FindRules(context.Background())
			require.NoError(t, err)
			if tt.wantStatus != http.StatusCreated {
				assert.Len(t, stored, 2)
				cache.AssertNotCalled(t, "Invalidate", mock.Anything)
				return
			}

			var rule models.MaintenanceRule
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rule))
			_, err = uuid.Parse(rule.ID)
			assert.NoError(t, err)
			assert.Equal(t, "2024-06-15T09:30:00Z", rule.LastUpdated)
			require.Len(t, stored, 3)
			assert.Equal(t, rule.ID, stored[2].ID)
			cache.AssertCalled(t, "Invalidate", mock.Anything)
		})
	}
}

func TestRuleHandler_Create_StoreError(t *testing.T) {
	store := new(MockStore)
	store.On("InsertRule", mock.Anything, mock.AnythingOfType("models.MaintenanceRule")).Return(errBroken)
	svc, _ := newTestService(store, nil)
	handler := NewRuleHandler(store, svc, nil)

	body := `{"name":"Pickups 20k","mileageInterval":20000,"serviceTasks":"Cambio de aceite y filtros"}`
	w := httptest.NewRecorder()
	handler.Create(w, httptest.NewRequest("POST", "/api/rules", bytes.NewBufferString(body)))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	store.AssertExpectations(t)
}
