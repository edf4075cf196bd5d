package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukydev/fleet-maintenance/internal/dashboard"
)

// Sheet names of the due report.
const (
	DueSheet     = "Vencimientos"
	SummarySheet = "Resumen"
)

var dueHeaders = []string{
	"Placa",
	"ID Vehículo",
	"Servicio Próximo",
	"Servicio Vencido",
	"Verificación Próxima",
	"Próximo Servicio (fecha)",
	"Próximo Servicio (km)",
	"Próxima Verificación",
	"Origen",
	"Reglas",
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

// WriteDueReport renders the per-vehicle due listing and the dashboard
// counters as an xlsx workbook.
func WriteDueReport(w io.Writer, stats dashboard.Stats, due []dashboard.VehicleDue) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", DueSheet)
	for i, h := range dueHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(DueSheet, cell, h); err != nil {
			return err
		}
	}

	for r, d := range due {
		row := r + 2
		var mileage interface{} = ""
		if d.Due.NextServiceMileage != nil {
			mileage = *d.Due.NextServiceMileage
		}
		values := []interface{}{
			d.VehiclePlate,
			d.VehicleID,
			yesNo(d.Due.ServiceUpcoming),
			yesNo(d.Due.ServiceOverdue),
			yesNo(d.Due.VerificationUpcoming),
			d.Due.NextServiceDate,
			mileage,
			d.Due.NextVerificationDate,
			string(d.Due.Source),
			strings.Join(d.Rules, ", "),
		}
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(DueSheet, cell, v); err != nil {
				return err
			}
		}
	}
	f.SetColWidth(DueSheet, "A", "B", 14)
	f.SetColWidth(DueSheet, "C", "E", 18)
	f.SetColWidth(DueSheet, "F", "H", 22)
	f.SetColWidth(DueSheet, "I", "I", 10)
	f.SetColWidth(DueSheet, "J", "J", 40)

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	summary := [][2]interface{}{
		{"Fecha", stats.Date},
		{"Servicios Próximos", stats.UpcomingServices},
		{"Servicios Vencidos", stats.OverdueServices},
		{"Verificaciones Próximas", stats.UpcomingVerifications},
		{"Siniestros Activos", stats.ActiveIncidents},
		{"Operativos", stats.StatusCounts.Operational},
		{"En Taller", stats.StatusCounts.InWorkshop},
		{"Siniestrados", stats.StatusCounts.Incident},
		{"Baja", stats.StatusCounts.Decommissioned},
		{"Registros Omitidos", stats.SkippedRecords},
	}
	for i, kv := range summary {
		row := i + 1
		if err := f.SetCellValue(SummarySheet, fmt.Sprintf("A%d", row), kv[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(SummarySheet, fmt.Sprintf("B%d", row), kv[1]); err != nil {
			return err
		}
	}
	f.SetColWidth(SummarySheet, "A", "A", 26)
	f.SetColWidth(SummarySheet, "B", "B", 14)

	return f.Write(w)
}
