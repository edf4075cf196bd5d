package dashboard

import (
	"fmt"
	"sort"
	"time"

	"github.com/ukydev/fleet-maintenance/internal/fleet"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// DocumentExpiryWindowDays is how far ahead insurance expiry is reported.
const DocumentExpiryWindowDays = 30

// Notifications synthesizes the alerts shown in the notification center from
// the current fleet state. Categories switched off in prefs are left out.
// Items are ordered newest first, then by id.
func (a *Aggregator) Notifications(s *fleet.Snapshot, today time.Time, prefs models.NotificationPreferences) []models.NotificationItem {
	today = models.Day(today)
	todayStr := models.FormatDate(today)
	items := []models.NotificationItem{}

	for _, d := range a.VehicleStatuses(s, today, FilterAll) {
		due := d.Due
		switch {
		case due.ServiceOverdue && prefs.Enabled(models.PrefMaintenanceOverdue):
			items = append(items, models.NotificationItem{
				ID:           "overdue-" + d.VehicleID,
				Type:         models.NotificationService,
				Title:        "Servicio vencido: " + d.VehiclePlate,
				Message:      overdueMessage(d),
				Date:         orDefault(due.NextServiceDate, todayStr),
				Link:         "/maintenance?filter=overdue_services",
				Severity:     models.SeverityCritical,
				VehicleID:    d.VehicleID,
				VehiclePlate: d.VehiclePlate,
			})
		case due.ServiceUpcoming && !due.ServiceOverdue && prefs.Enabled(models.PrefMaintenanceUpcoming):
			items = append(items, models.NotificationItem{
				ID:           "service-" + d.VehicleID,
				Type:         models.NotificationService,
				Title:        "Servicio próximo: " + d.VehiclePlate,
				Message:      fmt.Sprintf("%s tiene un servicio programado en los próximos días.", d.VehiclePlate),
				Date:         orDefault(due.NextServiceDate, todayStr),
				Link:         "/maintenance?filter=upcoming_services",
				Severity:     models.SeverityWarning,
				VehicleID:    d.VehicleID,
				VehiclePlate: d.VehiclePlate,
			})
		}
		if due.VerificationUpcoming && prefs.Enabled(models.PrefVerificationUpcoming) {
			items = append(items, models.NotificationItem{
				ID:           "verification-" + d.VehicleID,
				Type:         models.NotificationVerification,
				Title:        "Verificación próxima: " + d.VehiclePlate,
				Message:      fmt.Sprintf("%s debe verificarse antes del %s.", d.VehiclePlate, orDefault(due.NextVerificationDate, "próximo periodo")),
				Date:         orDefault(due.NextVerificationDate, todayStr),
				Link:         "/maintenance?filter=upcoming_verifications",
				Severity:     models.SeverityWarning,
				VehicleID:    d.VehicleID,
				VehiclePlate: d.VehiclePlate,
			})
		}
	}

	for _, inc := range s.Incidents() {
		if !inc.IsActive() {
			continue
		}
		pref := models.PrefIncidentStatusUpdate
		if inc.Status == models.IncidentOpen {
			pref = models.PrefIncidentNew
		}
		if !prefs.Enabled(pref) {
			continue
		}
		severity := models.SeverityWarning
		if inc.DamageLevel == models.DamageTotalLoss {
			severity = models.SeverityCritical
		}
		plate := s.Plate(inc.VehicleID)
		date, _, _ := activityDate(inc.LastUpdated, inc.Date)
		items = append(items, models.NotificationItem{
			ID:           "incident-" + inc.ID,
			Type:         models.NotificationIncident,
			Title:        fmt.Sprintf("Siniestro %s: %s", inc.Status, plate),
			Message:      fmt.Sprintf("%s para %s el %s.", truncate(inc.Description, 50), plate, inc.Date),
			Date:         date,
			Link:         "/incidents?filter=active",
			Severity:     severity,
			VehicleID:    inc.VehicleID,
			VehiclePlate: plate,
		})
	}

	if prefs.Enabled(models.PrefDocumentExpiry) {
		limit := today.AddDate(0, 0, DocumentExpiryWindowDays)
		for _, v := range s.Vehicles() {
			if v.Status == models.VehicleDecommissioned {
				continue
			}
			expiry, ok := models.ParseOptionalDate(v.InsuranceExpiryDate)
			if !ok || !expiry.Before(limit) {
				continue
			}
			item := models.NotificationItem{
				ID:           "insurance-" + v.ID,
				Type:         models.NotificationGeneral,
				Date:         models.FormatDate(expiry),
				Link:         "/fleet/" + v.ID,
				VehicleID:    v.ID,
				VehiclePlate: v.Plate,
			}
			if expiry.Before(today) {
				item.Title = "Seguro vencido: " + v.Plate
				item.Message = fmt.Sprintf("La póliza %s venció el %s.", v.InsurancePolicy, item.Date)
				item.Severity = models.SeverityCritical
			} else {
				item.Title = "Seguro por vencer: " + v.Plate
				item.Message = fmt.Sprintf("La póliza %s vence el %s.", v.InsurancePolicy, item.Date)
				item.Severity = models.SeverityWarning
			}
			items = append(items, item)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		ti, iok := models.ParseTimestamp(items[i].Date)
		tj, jok := models.ParseTimestamp(items[j].Date)
		if iok != jok {
			return iok
		}
		if iok && !ti.Equal(tj) {
			return ti.After(tj)
		}
		return items[i].ID < items[j].ID
	})
	return items
}

func overdueMessage(d VehicleDue) string {
	due := d.Due
	switch {
	case due.NextServiceMileage != nil && due.NextServiceDate != "":
		return fmt.Sprintf("%s debía recibir servicio el %s o a los %d km.", d.VehiclePlate, due.NextServiceDate, *due.NextServiceMileage)
	case due.NextServiceMileage != nil:
		return fmt.Sprintf("%s alcanzó el kilometraje de servicio (%d km).", d.VehiclePlate, *due.NextServiceMileage)
	case due.NextServiceDate != "":
		return fmt.Sprintf("%s debía recibir servicio el %s.", d.VehiclePlate, due.NextServiceDate)
	default:
		return fmt.Sprintf("%s no tiene un servicio registrado desde su último mantenimiento.", d.VehiclePlate)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
