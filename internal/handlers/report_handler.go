package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/worksheetlab/worksheet-service/internal/models"
	"github.com/worksheetlab/worksheet-service/internal/services"
	"github.com/worksheetlab/worksheet-service/internal/utils"
)

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

// SummaryResponse pairs the report summary with its share text
type SummaryResponse struct {
	Summary   *models.ReportSummary `json:"summary"`
	ShareText string                `json:"share_text"`
}

// DownloadPDF renders and downloads the scored report as PDF
// @Summary Download report PDF
// @Tags reports
// @Produce application/pdf
// @Param id path string true "Session ID"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/report [get]
func (h *ReportHandler) DownloadPDF(c *gin.Context) {
	sessionID := ParseSessionIDParam(c)
	if sessionID == "" {
		return
	}

	h.LogRequest(c, "Rendering report PDF", "session_id", sessionID)

	file, err := h.reportService.RenderPDF(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// DownloadXLSX exports the scored report as an Excel workbook
// @Summary Download report XLSX
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Session ID"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/report/export [get]
func (h *ReportHandler) DownloadXLSX(c *gin.Context) {
	sessionID := ParseSessionIDParam(c)
	if sessionID == "" {
		return
	}

	h.LogRequest(c, "Exporting report XLSX", "session_id", sessionID)

	file, err := h.reportService.ExportXLSX(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// GetSummary returns the report summary and share text as JSON
// @Summary Get report summary
// @Tags reports
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SummaryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/report/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	sessionID := ParseSessionIDParam(c)
	if sessionID == "" {
		return
	}

	summary, err := h.reportService.BuildSummary(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	shareText, err := h.reportService.ShareText(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SummaryResponse{
		Summary:   summary,
		ShareText: shareText,
	})
}
