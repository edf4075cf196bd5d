package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-maintenance/internal/fleet"
	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/metrics"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// DefaultActivityLimit is the length of the recent activity feed.
const DefaultActivityLimit = 5

// ActivityKind tells which collection an activity item comes from.
type ActivityKind string

const (
	ActivityMaintenance ActivityKind = "maintenance"
	ActivityIncident    ActivityKind = "incident"
)

// ActivityItem is one entry of the recent activity feed.
type ActivityItem struct {
	ID           string                  `json:"id"`
	Kind         ActivityKind            `json:"kind"`
	RecordID     string                  `json:"recordId"`
	VehicleID    string                  `json:"vehicleId"`
	VehiclePlate string                  `json:"vehiclePlate"`
	Type         models.NotificationType `json:"type"`
	Title        string                  `json:"title"`
	Message      string                  `json:"message"`
	Date         string                  `json:"date"`
	Severity     models.Severity         `json:"severity"`
	Link         string                  `json:"link"`
}

type datedActivity struct {
	item ActivityItem
	at   time.Time
	ok   bool
}

// StatusCounts partitions the fleet by vehicle status.
type StatusCounts struct {
	Operational    int `json:"operational"`
	InWorkshop     int `json:"inWorkshop"`
	Incident       int `json:"incident"`
	Decommissioned int `json:"decommissioned"`
}

// Stats is the dashboard summary for one day.
type Stats struct {
	Date                  string         `json:"date"`
	UpcomingServices      int            `json:"upcomingServices"`
	OverdueServices       int            `json:"overdueServices"`
	UpcomingVerifications int            `json:"upcomingVerifications"`
	ActiveIncidents       int            `json:"activeIncidents"`
	RecentActivity        []ActivityItem `json:"recentActivity"`
	StatusCounts          StatusCounts   `json:"statusCounts"`
	SkippedRecords        int            `json:"skippedRecords"`
}

// VehicleDue is the due classification of one vehicle.
type VehicleDue struct {
	VehicleID    string                `json:"vehicleId"`
	VehiclePlate string                `json:"vehiclePlate"`
	Registered   bool                  `json:"registered"`
	Due          maintenance.DueStatus `json:"due"`
	Rules        []string              `json:"rules,omitempty"` // names of the applicable rules
}

// Filter selects vehicles in VehicleStatuses.
type Filter string

const (
	FilterAll                   Filter = ""
	FilterUpcomingServices      Filter = "upcoming_services"
	FilterOverdueServices       Filter = "overdue_services"
	FilterUpcomingVerifications Filter = "upcoming_verifications"
)

// ErrUnknownFilter is returned by ParseFilter.
var ErrUnknownFilter = errors.New("unknown filter")

// ParseFilter validates a filter query value.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.TrimSpace(s)); f {
	case FilterAll, FilterUpcomingServices, FilterOverdueServices, FilterUpcomingVerifications:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
	}
}

func (f Filter) match(d maintenance.DueStatus) bool {
	switch f {
	case FilterUpcomingServices:
		return d.ServiceUpcoming
	case FilterOverdueServices:
		return d.ServiceOverdue
	case FilterUpcomingVerifications:
		return d.VerificationUpcoming
	default:
		return true
	}
}

// Aggregator derives dashboard views from a fleet snapshot. It keeps no state
// between calls; the same snapshot and day always yield the same result.
type Aggregator struct {
	Windows       maintenance.Windows
	ActivityLimit int
	log           logrus.FieldLogger
}

// NewAggregator creates an aggregator with the given windows.
func NewAggregator(windows maintenance.Windows, logger logrus.FieldLogger) *Aggregator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Aggregator{Windows: windows, ActivityLimit: DefaultActivityLimit, log: logger}
}

func (a *Aggregator) resolver(s *fleet.Snapshot) *maintenance.Resolver {
	return maintenance.NewResolver(a.Windows, s.Rules())
}

// Compute folds the snapshot into fleet-wide counts, the recent activity feed
// and the status tally.
func (a *Aggregator) Compute(s *fleet.Snapshot, today time.Time) Stats {
	start := time.Now()
	defer func() {
		metrics.AggregationDuration.Observe(time.Since(start).Seconds())
	}()

	today = models.Day(today)
	stats := Stats{
		Date:           models.FormatDate(today),
		SkippedRecords: s.Skipped(),
	}

	resolver := a.resolver(s)
	for _, id := range s.VehicleIDs() {
		v, _ := s.VehicleByID(id)
		due := resolver.Resolve(v, s.EventsFor(id), today)
		if due.ServiceUpcoming {
			stats.UpcomingServices++
		}
		if due.ServiceOverdue {
			stats.OverdueServices++
		}
		if due.VerificationUpcoming {
			stats.UpcomingVerifications++
		}
	}

	for _, inc := range s.Incidents() {
		if inc.IsActive() {
			stats.ActiveIncidents++
		}
	}

	for _, v := range s.Vehicles() {
		switch v.Status {
		case models.VehicleOperational:
			stats.StatusCounts.Operational++
		case models.VehicleInWorkshop:
			stats.StatusCounts.InWorkshop++
		case models.VehicleIncident:
			stats.StatusCounts.Incident++
		case models.VehicleDecommissioned:
			stats.StatusCounts.Decommissioned++
		}
	}

	stats.RecentActivity = a.recentActivity(s, today)

	if stats.SkippedRecords > 0 {
		a.log.WithField("skipped", stats.SkippedRecords).Debug("Records skipped while computing dashboard")
	}
	return stats
}

func (a *Aggregator) recentActivity(s *fleet.Snapshot, today time.Time) []ActivityItem {
	var all []datedActivity
	for _, e := range s.Events() {
		all = append(all, maintenanceActivity(e, s.Plate(e.VehicleID), today))
	}
	for _, inc := range s.Incidents() {
		all = append(all, incidentActivity(inc, s.Plate(inc.VehicleID)))
	}

	// Newest first; undated records last; ties go to maintenance, then id.
	sort.SliceStable(all, func(i, j int) bool {
		x, y := all[i], all[j]
		if x.ok != y.ok {
			return x.ok
		}
		if x.ok && !x.at.Equal(y.at) {
			return x.at.After(y.at)
		}
		if x.item.Kind != y.item.Kind {
			return x.item.Kind == ActivityMaintenance
		}
		return x.item.RecordID < y.item.RecordID
	})

	limit := a.ActivityLimit
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	if len(all) > limit {
		all = all[:limit]
	}
	items := make([]ActivityItem, len(all))
	for i, d := range all {
		items[i] = d.item
	}
	return items
}

// activityDate is the LastUpdated timestamp, or the record date without one.
func activityDate(lastUpdated, date string) (string, time.Time, bool) {
	if strings.TrimSpace(lastUpdated) != "" {
		if t, ok := models.ParseTimestamp(lastUpdated); ok {
			return lastUpdated, t, true
		}
	}
	t, ok := models.ParseTimestamp(date)
	return date, t, ok
}

func maintenanceActivity(e models.MaintenanceEvent, plate string, today time.Time) datedActivity {
	date, at, ok := activityDate(e.LastUpdated, e.Date)
	typ := models.NotificationService
	if e.Type == models.MaintenanceVerification {
		typ = models.NotificationVerification
	}
	state := "Programado"
	if d, valid := models.ParseDate(e.Date); valid && d.Before(today) {
		state = "Realizado"
	}
	item := ActivityItem{
		ID:           "activity-m-" + e.ID,
		Kind:         ActivityMaintenance,
		RecordID:     e.ID,
		VehicleID:    e.VehicleID,
		VehiclePlate: plate,
		Type:         typ,
		Title:        fmt.Sprintf("%s %s: %s", e.Type, state, plate),
		Message:      fmt.Sprintf("%s para %s el %s. Kilometraje: %d km.", e.ServiceType, plate, e.Date, e.Mileage),
		Date:         date,
		Severity:     models.SeverityInfo,
		Link:         "/fleet/" + e.VehicleID,
	}
	return datedActivity{item: item, at: at, ok: ok}
}

func incidentActivity(inc models.Incident, plate string) datedActivity {
	date, at, ok := activityDate(inc.LastUpdated, inc.Date)
	severity := models.SeverityWarning
	if !inc.IsActive() {
		severity = models.SeverityInfo
	}
	item := ActivityItem{
		ID:           "activity-i-" + inc.ID,
		Kind:         ActivityIncident,
		RecordID:     inc.ID,
		VehicleID:    inc.VehicleID,
		VehiclePlate: plate,
		Type:         models.NotificationIncident,
		Title:        fmt.Sprintf("Siniestro %s: %s", inc.Status, plate),
		Message:      fmt.Sprintf("%s para %s el %s.", truncate(inc.Description, 50), plate, inc.Date),
		Date:         date,
		Severity:     severity,
		Link:         "/fleet/" + inc.VehicleID,
	}
	return datedActivity{item: item, at: at, ok: ok}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// VehicleStatuses classifies every vehicle known to the snapshot and keeps
// those matching filter.
func (a *Aggregator) VehicleStatuses(s *fleet.Snapshot, today time.Time, filter Filter) []VehicleDue {
	resolver := a.resolver(s)
	rules := s.Rules()
	out := []VehicleDue{}
	for _, id := range s.VehicleIDs() {
		d := a.vehicleDue(s, resolver, rules, id, today)
		if filter.match(d.Due) {
			out = append(out, d)
		}
	}
	return out
}

// VehicleDue classifies a single vehicle. The boolean is false when the id is
// unknown to the snapshot.
func (a *Aggregator) VehicleDue(s *fleet.Snapshot, id string, today time.Time) (VehicleDue, bool) {
	_, registered := s.VehicleByID(id)
	if !registered && len(s.EventsFor(id)) == 0 && len(s.IncidentsFor(id)) == 0 {
		return VehicleDue{}, false
	}
	return a.vehicleDue(s, a.resolver(s), s.Rules(), id, today), true
}

func (a *Aggregator) vehicleDue(s *fleet.Snapshot, resolver *maintenance.Resolver, rules []models.MaintenanceRule, id string, today time.Time) VehicleDue {
	v, registered := s.VehicleByID(id)
	d := VehicleDue{
		VehicleID:    id,
		VehiclePlate: s.Plate(id),
		Registered:   registered,
		Due:          resolver.Resolve(v, s.EventsFor(id), today),
	}
	if registered {
		for _, r := range maintenance.MatchRules(rules, *v) {
			d.Rules = append(d.Rules, r.Name)
		}
	}
	return d
}
