package models

// NotificationType groups notifications for display.
type NotificationType string

const (
	NotificationService      NotificationType = "Servicio"
	NotificationVerification NotificationType = "Verificación"
	NotificationIncident     NotificationType = "Siniestro"
	NotificationGeneral      NotificationType = "General"
)

// Severity of a notification.
type Severity string

const (
	SeverityInfo     Severity = "Info"
	SeverityWarning  Severity = "Warning"
	SeverityCritical Severity = "Critical"
)

// NotificationItem is derived from vehicle, maintenance and incident state when
// the dashboard is computed. It is never persisted as a source of truth.
type NotificationItem struct {
	ID           string           `json:"id"`
	Type         NotificationType `json:"type"`
	Title        string           `json:"title"`
	Message      string           `json:"message"`
	Date         string           `json:"date"` // RFC 3339 or YYYY-MM-DD
	IsRead       bool             `json:"isRead"`
	Link         string           `json:"link,omitempty"`
	Severity     Severity         `json:"severity"`
	VehicleID    string           `json:"vehicleId,omitempty"`
	VehiclePlate string           `json:"vehiclePlate,omitempty"`
}

// Notification preference keys.
const (
	PrefMaintenanceUpcoming  = "maintenance_upcoming"
	PrefMaintenanceOverdue   = "maintenance_overdue"
	PrefVerificationUpcoming = "verification_upcoming"
	PrefIncidentNew          = "incident_new"
	PrefIncidentStatusUpdate = "incident_status_update"
	PrefDocumentExpiry       = "document_expiry"
)

// NotificationPreferences enables or disables notification categories.
// Missing keys count as enabled.
type NotificationPreferences map[string]bool

// Enabled reports whether the category key is switched on.
func (p NotificationPreferences) Enabled(key string) bool {
	if p == nil {
		return true
	}
	on, ok := p[key]
	return !ok || on
}
