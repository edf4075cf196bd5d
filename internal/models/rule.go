package models

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidRule is returned by MaintenanceRule.Validate.
var ErrInvalidRule = errors.New("invalid maintenance rule")

// MaintenanceRule describes a recurring maintenance requirement. Its scope is
// either an explicit vehicle list, a vehicle category, or the whole fleet.
type MaintenanceRule struct {
	ID                 string   `json:"id" bson:"_id"`
	Name               string   `json:"name" bson:"name"`
	VehicleType        string   `json:"vehicleType,omitempty" bson:"vehicle_type,omitempty"` // "Todos" applies to every vehicle
	AssignedVehicleIDs []string `json:"assignedVehicleIds,omitempty" bson:"assigned_vehicle_ids,omitempty"`
	MileageInterval    *int     `json:"mileageInterval,omitempty" bson:"mileage_interval,omitempty"`        // in kilometers
	TimeIntervalMonths *int     `json:"timeIntervalMonths,omitempty" bson:"time_interval_months,omitempty"` // in months
	ServiceTasks       string   `json:"serviceTasks" bson:"service_tasks"`
	LastUpdated        string   `json:"lastUpdated" bson:"last_updated"`
}

// Validate checks the rule the way the rule editor does.
func (r MaintenanceRule) Validate() error {
	name := strings.TrimSpace(r.Name)
	if n := utf8.RuneCountInString(name); n < 3 || n > 100 {
		return fmt.Errorf("%w: name must be between 3 and 100 characters", ErrInvalidRule)
	}
	if utf8.RuneCountInString(strings.TrimSpace(r.ServiceTasks)) < 10 {
		return fmt.Errorf("%w: service tasks must be at least 10 characters", ErrInvalidRule)
	}
	if r.MileageInterval != nil && *r.MileageInterval < 0 {
		return fmt.Errorf("%w: mileage interval must not be negative", ErrInvalidRule)
	}
	if r.TimeIntervalMonths != nil && *r.TimeIntervalMonths < 0 {
		return fmt.Errorf("%w: time interval must not be negative", ErrInvalidRule)
	}
	if _, ok := r.Mileage(); ok {
		return nil
	}
	if _, ok := r.Months(); ok {
		return nil
	}
	if len(r.AssignedVehicleIDs) > 0 {
		return nil
	}
	return fmt.Errorf("%w: an interval or assigned vehicles are required", ErrInvalidRule)
}

// Mileage returns the positive mileage interval, if any.
func (r MaintenanceRule) Mileage() (int, bool) {
	if r.MileageInterval == nil || *r.MileageInterval <= 0 {
		return 0, false
	}
	return *r.MileageInterval, true
}

// Months returns the positive time interval in months, if any.
func (r MaintenanceRule) Months() (int, bool) {
	if r.TimeIntervalMonths == nil || *r.TimeIntervalMonths <= 0 {
		return 0, false
	}
	return *r.TimeIntervalMonths, true
}

// Clone returns a copy of r that shares no memory with it.
func (r MaintenanceRule) Clone() MaintenanceRule {
	out := r
	if r.AssignedVehicleIDs != nil {
		out.AssignedVehicleIDs = append([]string(nil), r.AssignedVehicleIDs...)
	}
	out.MileageInterval = cloneInt(r.MileageInterval)
	out.TimeIntervalMonths = cloneInt(r.TimeIntervalMonths)
	return out
}
