package models

// DamageLevel grades the damage reported in an incident.
type DamageLevel string

const (
	DamageMinor     DamageLevel = "Leve"
	DamageModerate  DamageLevel = "Moderado"
	DamageTotalLoss DamageLevel = "Pérdida Total"
)

// IncidentStatus is a step of the incident repair workflow, in order.
type IncidentStatus string

const (
	IncidentOpen                   IncidentStatus = "Abierto"
	IncidentUnderEvaluation        IncidentStatus = "En Evaluación"
	IncidentAwaitingParts          IncidentStatus = "Esperando Refacciones"
	IncidentInRepair               IncidentStatus = "En Reparación"
	IncidentRepairedAwaitingPickup IncidentStatus = "Reparado/Esperando Entrega"
	IncidentClosed                 IncidentStatus = "Cerrado"
)

// Incident represents an accident or damage report for a vehicle.
type Incident struct {
	ID                      string         `json:"id" bson:"_id"`
	VehicleID               string         `json:"vehicleId" bson:"vehicle_id"`
	VehiclePlate            string         `json:"vehiclePlate" bson:"vehicle_plate"`
	Date                    string         `json:"date" bson:"date"`                     // YYYY-MM-DD
	Time                    string         `json:"time,omitempty" bson:"time,omitempty"` // HH:MM
	Description             string         `json:"description" bson:"description"`
	DamageLevel             DamageLevel    `json:"damageLevel" bson:"damage_level"`
	Status                  IncidentStatus `json:"status" bson:"status"`
	Location                string         `json:"location,omitempty" bson:"location,omitempty"`
	ThirdPartyName          string         `json:"thirdPartyName,omitempty" bson:"third_party_name,omitempty"`
	ThirdPartyVehiclePlate  string         `json:"thirdPartyVehiclePlate,omitempty" bson:"third_party_vehicle_plate,omitempty"`
	ThirdPartyInsurance     string         `json:"thirdPartyInsurance,omitempty" bson:"third_party_insurance,omitempty"`
	Notes                   string         `json:"notes,omitempty" bson:"notes,omitempty"`
	Workshop                string         `json:"workshop,omitempty" bson:"workshop,omitempty"`
	EstimatedResolutionDate *string        `json:"estimatedResolutionDate,omitempty" bson:"estimated_resolution_date,omitempty"`
	LastUpdated             string         `json:"lastUpdated" bson:"last_updated"`
}

// IsActive reports whether the incident is still being resolved.
func (i Incident) IsActive() bool {
	return i.Status != IncidentClosed
}

// Clone returns a copy of i that shares no pointers with it.
func (i Incident) Clone() Incident {
	out := i
	out.EstimatedResolutionDate = cloneString(i.EstimatedResolutionDate)
	return out
}

// MoreRecent reports whether i happened after other, by date, then
// LastUpdated, then ID.
func (i Incident) MoreRecent(other Incident) bool {
	id, iok := ParseDate(i.Date)
	od, ook := ParseDate(other.Date)
	if iok != ook {
		return iok
	}
	if iok && !id.Equal(od) {
		return id.After(od)
	}
	iu, iuok := ParseTimestamp(i.LastUpdated)
	ou, ouok := ParseTimestamp(other.LastUpdated)
	if iuok != ouok {
		return iuok
	}
	if iuok && !iu.Equal(ou) {
		return iu.After(ou)
	}
	return i.ID > other.ID
}
