package models

// MaintenanceType distinguishes regular services from emissions verifications.
type MaintenanceType string

const (
	MaintenanceService      MaintenanceType = "Servicio"
	MaintenanceVerification MaintenanceType = "Verificación"
)

// MaintenanceEvent represents a service or verification performed on (or
// scheduled for) a vehicle.
type MaintenanceEvent struct {
	ID           string          `json:"id" bson:"_id"`
	VehicleID    string          `json:"vehicleId" bson:"vehicle_id"`
	VehiclePlate string          `json:"vehiclePlate" bson:"vehicle_plate"`
	Date         string          `json:"date" bson:"date"`       // YYYY-MM-DD
	Mileage      int             `json:"mileage" bson:"mileage"` // odometer at event time, in kilometers
	Type         MaintenanceType `json:"type" bson:"type"`
	ServiceType  string          `json:"serviceType" bson:"service_type"`
	Workshop     string          `json:"workshop,omitempty" bson:"workshop,omitempty"`
	Cost         *float64        `json:"cost,omitempty" bson:"cost,omitempty"`
	Notes        string          `json:"notes,omitempty" bson:"notes,omitempty"`
	LastUpdated  string          `json:"lastUpdated" bson:"last_updated"`
}

// Clone returns a copy of e that shares no pointers with it.
func (e MaintenanceEvent) Clone() MaintenanceEvent {
	out := e
	out.Cost = cloneFloat(e.Cost)
	return out
}

// MoreRecent reports whether e happened after other. Events are ordered by
// date, then odometer reading, then LastUpdated, then ID, so the order is total
// and independent of the order records were loaded in. Unparseable dates sort
// before every valid date.
func (e MaintenanceEvent) MoreRecent(other MaintenanceEvent) bool {
	ed, eok := ParseDate(e.Date)
	od, ook := ParseDate(other.Date)
	if eok != ook {
		return eok
	}
	if eok && !ed.Equal(od) {
		return ed.After(od)
	}
	if e.Mileage != other.Mileage {
		return e.Mileage > other.Mileage
	}
	eu, euok := ParseTimestamp(e.LastUpdated)
	ou, ouok := ParseTimestamp(other.LastUpdated)
	if euok != ouok {
		return euok
	}
	if euok && !eu.Equal(ou) {
		return eu.After(ou)
	}
	return e.ID > other.ID
}
