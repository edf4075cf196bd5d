package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-maintenance/internal/dashboard"
	"github.com/ukydev/fleet-maintenance/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler exports the due report as a spreadsheet
type ReportHandler struct {
	service *dashboard.Service
	log     logrus.FieldLogger
}

// NewReportHandler creates a new report handler
func NewReportHandler(service *dashboard.Service, logger logrus.FieldLogger) *ReportHandler {
	return &ReportHandler{service: service, log: orStandard(logger)}
}

// DueReport handles GET /api/reports/due.xlsx
func (h *ReportHandler) DueReport(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		serverError(w, h.log, "Failed to load fleet data", err)
		return
	}

	today := h.service.Today()
	stats := h.service.Aggregator.Compute(snap, today)
	due := h.service.Aggregator.VehicleStatuses(snap, today, dashboard.FilterAll)

	var buf bytes.Buffer
	if err := report.WriteDueReport(&buf, stats, due); err != nil {
		serverError(w, h.log, "Failed to build report", err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="vencimientos-%s.xlsx"`, stats.Date))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.WithError(err).Warn("Failed to write report")
	}
}
