package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-maintenance/internal/dashboard"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// RuleHandler lists and creates maintenance rules
type RuleHandler struct {
	rules   db.RuleCollection
	service *dashboard.Service
	log     logrus.FieldLogger
}

// NewRuleHandler creates a new rule handler
func NewRuleHandler(rules db.RuleCollection, service *dashboard.Service, logger logrus.FieldLogger) *RuleHandler {
	return &RuleHandler{rules: rules, service: service, log: orStandard(logger)}
}

// List handles GET /api/rules
func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.FindRules(r.Context())
	if err != nil {
		serverError(w, h.log, "Failed to load rules", err)
		return
	}
	if rules == nil {
		rules = []models.MaintenanceRule{}
	}
	writeJSON(w, http.StatusOK, rules, h.log)
}

// Create handles POST /api/rules
func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var rule models.MaintenanceRule
	if err := json.Unmarshal(body, &rule); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := rule.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rule.ID = uuid.New().String()
	rule.LastUpdated = h.service.Now().UTC().Format(time.RFC3339)
	if err := h.rules.InsertRule(r.Context(), rule); err != nil {
		serverError(w, h.log, "Failed to create rule", err)
		return
	}

	h.service.Invalidate(r.Context())
	h.log.WithFields(logrus.Fields{"rule_id": rule.ID, "name": rule.Name}).Info("Maintenance rule created")
	writeJSON(w, http.StatusCreated, rule, h.log)
}
