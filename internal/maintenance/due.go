package maintenance

import (
	"time"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

// Default look-ahead windows, in days.
const (
	DefaultServiceWindowDays      = 15
	DefaultVerificationWindowDays = 30
)

// Windows holds the look-ahead periods used to flag upcoming work.
type Windows struct {
	ServiceDays      int `yaml:"service_days" json:"serviceDays"`
	VerificationDays int `yaml:"verification_days" json:"verificationDays"`
}

// DefaultWindows returns the 15/30 day windows.
func DefaultWindows() Windows {
	return Windows{ServiceDays: DefaultServiceWindowDays, VerificationDays: DefaultVerificationWindowDays}
}

func (w Windows) withDefaults() Windows {
	if w.ServiceDays <= 0 {
		w.ServiceDays = DefaultServiceWindowDays
	}
	if w.VerificationDays <= 0 {
		w.VerificationDays = DefaultVerificationWindowDays
	}
	return w
}

// MarkerSource tells where the service markers of a DueStatus come from.
type MarkerSource string

const (
	SourceExplicit MarkerSource = "explicit"
	SourceRule     MarkerSource = "rule"
	SourceNone     MarkerSource = "none"
)

// DueStatus is the classification of one vehicle on a given day.
type DueStatus struct {
	ServiceUpcoming      bool         `json:"serviceUpcoming"`
	ServiceOverdue       bool         `json:"serviceOverdue"`
	VerificationUpcoming bool         `json:"verificationUpcoming"`
	NextServiceDate      string       `json:"nextServiceDate,omitempty"`
	NextServiceMileage   *int         `json:"nextServiceMileage,omitempty"`
	NextVerificationDate string       `json:"nextVerificationDate,omitempty"`
	Source               MarkerSource `json:"source"`
	Rules                []string     `json:"rules,omitempty"`
}

// Resolver classifies vehicles as having upcoming or overdue work.
type Resolver struct {
	Windows Windows
	// Rules are consulted for vehicles without explicit service markers.
	Rules []models.MaintenanceRule
}

// NewResolver returns a resolver using the given windows and rules.
func NewResolver(windows Windows, rules []models.MaintenanceRule) *Resolver {
	return &Resolver{Windows: windows.withDefaults(), Rules: rules}
}

type markers struct {
	serviceDate     time.Time
	hasServiceDate  bool
	serviceMileage  int
	hasMileage      bool
	verification    time.Time
	hasVerification bool
	currentMileage  int
	source          MarkerSource
	rules           []string
}

func (r *Resolver) markers(vehicle *models.Vehicle, history []models.MaintenanceEvent) markers {
	m := markers{source: SourceNone}
	if vehicle == nil {
		return m
	}
	m.currentMileage = vehicle.CurrentMileage
	m.verification, m.hasVerification = models.ParseOptionalDate(vehicle.NextVerificationDate)
	m.serviceDate, m.hasServiceDate = models.ParseOptionalDate(vehicle.NextServiceDate)
	m.serviceMileage, m.hasMileage = vehicle.ServiceMileageTarget()
	if m.hasServiceDate || m.hasMileage {
		m.source = SourceExplicit
		return m
	}
	p := ProjectAll(r.Rules, *vehicle, history)
	if p.Empty() {
		return m
	}
	m.source = SourceRule
	m.rules = p.Rules
	if p.Date != nil {
		m.serviceDate, m.hasServiceDate = models.Day(*p.Date), true
	}
	if p.Mileage != nil && *p.Mileage > 0 {
		m.serviceMileage, m.hasMileage = *p.Mileage, true
	}
	return m
}

// Resolve classifies one vehicle. history must hold the vehicle's own
// maintenance events. vehicle may be nil for a history whose vehicle is not
// registered; only the history is evaluated then. Unparseable dates are
// ignored.
func (r *Resolver) Resolve(vehicle *models.Vehicle, history []models.MaintenanceEvent, today time.Time) DueStatus {
	w := r.Windows.withDefaults()
	today = models.Day(today)
	serviceEnd := today.AddDate(0, 0, w.ServiceDays)
	verificationEnd := today.AddDate(0, 0, w.VerificationDays)
	within := func(d, end time.Time) bool {
		return d.After(today) && d.Before(end)
	}

	m := r.markers(vehicle, history)
	status := DueStatus{Source: m.source, Rules: m.rules}
	if m.hasServiceDate {
		status.NextServiceDate = models.FormatDate(m.serviceDate)
	}
	if m.hasMileage {
		mileage := m.serviceMileage
		status.NextServiceMileage = &mileage
	}
	if m.hasVerification {
		status.NextVerificationDate = models.FormatDate(m.verification)
	}

	// Upcoming: explicit markers or anything already scheduled in the window.
	status.ServiceUpcoming = m.hasServiceDate && within(m.serviceDate, serviceEnd)
	status.VerificationUpcoming = m.hasVerification && within(m.verification, verificationEnd)
	for _, e := range history {
		d, ok := models.ParseDate(e.Date)
		if !ok {
			continue
		}
		switch e.Type {
		case models.MaintenanceService:
			status.ServiceUpcoming = status.ServiceUpcoming || within(d, serviceEnd)
		case models.MaintenanceVerification:
			status.VerificationUpcoming = status.VerificationUpcoming || within(d, verificationEnd)
		}
	}

	// Overdue: markers first, then a past last service unless a marker still
	// points forward.
	if m.hasServiceDate && m.serviceDate.Before(today) {
		status.ServiceOverdue = true
	}
	if m.hasMileage && m.currentMileage >= m.serviceMileage {
		status.ServiceOverdue = true
	}
	if !status.ServiceOverdue {
		if last, ok := LatestEvent(history, models.MaintenanceService); ok {
			if d, ok := models.ParseDate(last.Date); ok && d.Before(today) {
				forward := (m.hasServiceDate && m.serviceDate.After(today)) ||
					(m.hasMileage && m.currentMileage < m.serviceMileage)
				status.ServiceOverdue = !forward
			}
		}
	}
	return status
}
