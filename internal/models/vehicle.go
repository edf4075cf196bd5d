package models

// VehicleStatus is the lifecycle state of a vehicle.
type VehicleStatus string

const (
	VehicleOperational    VehicleStatus = "Operativo"
	VehicleInWorkshop     VehicleStatus = "En Taller"
	VehicleIncident       VehicleStatus = "Siniestrado"
	VehicleDecommissioned VehicleStatus = "Baja"
)

// Vehicle represents a fleet vehicle.
type Vehicle struct {
	ID                   string        `bson:"_id" json:"id"`
	Plate                string        `bson:"plate" json:"plate"`
	Brand                string        `bson:"brand" json:"brand"`
	Model                string        `bson:"model" json:"model"`
	Year                 int           `bson:"year" json:"year"`
	Color                string        `bson:"color,omitempty" json:"color,omitempty"`
	Type                 string        `bson:"type,omitempty" json:"type,omitempty"` // category: "Sedán", "SUV", "Pickup", "Van", "Camión Ligero"
	Status               VehicleStatus `bson:"status" json:"status"`
	CurrentMileage       int           `bson:"current_mileage" json:"currentMileage"` // in kilometers
	NextServiceDate      *string       `bson:"next_service_date,omitempty" json:"nextServiceDate,omitempty"`
	NextServiceMileage   *int          `bson:"next_service_mileage,omitempty" json:"nextServiceMileage,omitempty"`
	NextVerificationDate *string       `bson:"next_verification_date,omitempty" json:"nextVerificationDate,omitempty"`
	SerialNumber         string        `bson:"serial_number,omitempty" json:"serialNumber,omitempty"`
	EngineNumber         string        `bson:"engine_number,omitempty" json:"engineNumber,omitempty"`
	InsurancePolicy      string        `bson:"insurance_policy,omitempty" json:"insurancePolicy,omitempty"`
	InsuranceExpiryDate  *string       `bson:"insurance_expiry_date,omitempty" json:"insuranceExpiryDate,omitempty"`
	CirculationCard      string        `bson:"circulation_card,omitempty" json:"circulationCard,omitempty"`
	AcquisitionDate      *string       `bson:"acquisition_date,omitempty" json:"acquisitionDate,omitempty"`
	Notes                string        `bson:"notes,omitempty" json:"notes,omitempty"`
	LastUpdated          string        `bson:"last_updated" json:"lastUpdated"`
}

// Clone returns a copy of v that shares no pointers with it.
func (v Vehicle) Clone() Vehicle {
	out := v
	out.NextServiceDate = cloneString(v.NextServiceDate)
	out.NextServiceMileage = cloneInt(v.NextServiceMileage)
	out.NextVerificationDate = cloneString(v.NextVerificationDate)
	out.InsuranceExpiryDate = cloneString(v.InsuranceExpiryDate)
	out.AcquisitionDate = cloneString(v.AcquisitionDate)
	return out
}

// ServiceMileageTarget returns the explicit next-service odometer reading.
// Zero or negative values are treated as unset.
func (v Vehicle) ServiceMileageTarget() (int, bool) {
	if v.NextServiceMileage == nil || *v.NextServiceMileage <= 0 {
		return 0, false
	}
	return *v.NextServiceMileage, true
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}
