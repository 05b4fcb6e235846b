package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hanare-juku/schedule-api/internal/service"
	"github.com/hanare-juku/schedule-api/pkg/response"
)

// ExportHandler serves day-schedule downloads.
type ExportHandler struct {
	backup *service.BackupService
}

// NewExportHandler constructs handler.
func NewExportHandler(backup *service.BackupService) *ExportHandler {
	return &ExportHandler{backup: backup}
}

// DayCSV godoc
// @Summary Download a date's schedule as CSV
// @Tags Exports
// @Produce text/csv
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /days/{date}/export.csv [get]
func (h *ExportHandler) DayCSV(c *gin.Context) {
	date := c.Param("date")
	payload, err := h.backup.ExportDayCSV(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=schedule-%s.csv", date))
	c.Data(http.StatusOK, "text/csv", payload)
}

// DayPDF godoc
// @Summary Download a date's schedule as a printable PDF
// @Tags Exports
// @Produce application/pdf
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /days/{date}/export.pdf [get]
func (h *ExportHandler) DayPDF(c *gin.Context) {
	date := c.Param("date")
	payload, err := h.backup.ExportDayPDF(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=schedule-%s.pdf", date))
	c.Data(http.StatusOK, "application/pdf", payload)
}
