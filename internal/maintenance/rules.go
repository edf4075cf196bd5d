package maintenance

import (
	"slices"
	"strings"
	"time"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

// allVehicles are VehicleType values that scope a rule to the whole fleet.
var allVehicles = []string{"todos", "all"}

// RuleApplies reports whether rule covers vehicle. A non-empty assigned list
// decides on its own; otherwise the rule matches by category, and a rule with
// neither a list nor a category covers every vehicle.
func RuleApplies(rule models.MaintenanceRule, vehicle models.Vehicle) bool {
	if len(rule.AssignedVehicleIDs) > 0 {
		return slices.Contains(rule.AssignedVehicleIDs, vehicle.ID)
	}
	scope := strings.TrimSpace(rule.VehicleType)
	if scope == "" {
		return true
	}
	for _, all := range allVehicles {
		if strings.EqualFold(scope, all) {
			return true
		}
	}
	return strings.EqualFold(scope, strings.TrimSpace(vehicle.Type))
}

// MatchRules returns the rules that apply to vehicle, in input order.
func MatchRules(rules []models.MaintenanceRule, vehicle models.Vehicle) []models.MaintenanceRule {
	var out []models.MaintenanceRule
	for _, r := range rules {
		if RuleApplies(r, vehicle) {
			out = append(out, r)
		}
	}
	return out
}

// Projection holds the next-due markers a rule yields for one vehicle.
type Projection struct {
	Rules   []string   `json:"rules,omitempty"` // ids of the rules the markers come from
	Mileage *int       `json:"nextServiceMileage,omitempty"`
	Date    *time.Time `json:"nextServiceDate,omitempty"`
}

// Empty reports whether the projection carries no marker.
func (p Projection) Empty() bool {
	return p.Mileage == nil && p.Date == nil
}

// LatestEvent returns the most recent event of type typ in history.
func LatestEvent(history []models.MaintenanceEvent, typ models.MaintenanceType) (models.MaintenanceEvent, bool) {
	var latest models.MaintenanceEvent
	found := false
	for _, e := range history {
		if e.Type != typ {
			continue
		}
		if !found || e.MoreRecent(latest) {
			latest = e
			found = true
		}
	}
	return latest, found
}

// Project computes the next service markers rule implies given the vehicle's
// history. Without a prior service there is nothing to project from.
func Project(rule models.MaintenanceRule, history []models.MaintenanceEvent) Projection {
	last, ok := LatestEvent(history, models.MaintenanceService)
	if !ok {
		return Projection{}
	}
	var p Projection
	if interval, ok := rule.Mileage(); ok {
		m := last.Mileage + interval
		p.Mileage = &m
	}
	if months, ok := rule.Months(); ok {
		if d, ok := models.ParseDate(last.Date); ok {
			due := models.AddMonths(d, months)
			p.Date = &due
		}
	}
	if !p.Empty() {
		p.Rules = []string{rule.ID}
	}
	return p
}

// Tightest folds several projections into one: the earliest date and the
// lowest mileage win, each on its own.
func Tightest(projections []Projection) Projection {
	var out Projection
	var dateRule, mileageRule []string
	for _, p := range projections {
		if p.Date != nil && (out.Date == nil || p.Date.Before(*out.Date)) {
			d := *p.Date
			out.Date = &d
			dateRule = p.Rules
		}
		if p.Mileage != nil && (out.Mileage == nil || *p.Mileage < *out.Mileage) {
			m := *p.Mileage
			out.Mileage = &m
			mileageRule = p.Rules
		}
	}
	for _, id := range append(append([]string(nil), dateRule...), mileageRule...) {
		if !slices.Contains(out.Rules, id) {
			out.Rules = append(out.Rules, id)
		}
	}
	return out
}

// ProjectAll projects every rule that applies to vehicle and folds the results.
func ProjectAll(rules []models.MaintenanceRule, vehicle models.Vehicle, history []models.MaintenanceEvent) Projection {
	matched := MatchRules(rules, vehicle)
	projections := make([]Projection, 0, len(matched))
	for _, r := range matched {
		projections = append(projections, Project(r, history))
	}
	return Tightest(projections)
}
