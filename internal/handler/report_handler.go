package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-eval-api/internal/models"
	appErrors "github.com/noah-isme/faculty-eval-api/pkg/errors"
	"github.com/noah-isme/faculty-eval-api/pkg/response"
)

type reportService interface {
	FacultySummary(ctx context.Context, facultyID string) (*models.FacultySummary, error)
	CriterionSummaries(ctx context.Context, facultyID string) ([]models.CriterionSummary, error)
	PeriodSummaries(ctx context.Context, facultyID string) ([]models.PeriodSummary, error)
	DepartmentReport(ctx context.Context, claims *models.JWTClaims, requested string) (*models.DepartmentReport, error)
}

// ReportHandler serves aggregation reports.
type ReportHandler struct {
	service reportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc reportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// FacultySummary godoc
// @Summary Faculty rating summary
// @Tags Reports
// @Produce json
// @Param id path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/faculty/{id}/summary [get]
func (h *ReportHandler) FacultySummary(c *gin.Context) {
	summary, err := h.service.FacultySummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// CriterionSummaries godoc
// @Summary Per-criterion rating summary
// @Tags Reports
// @Produce json
// @Param id path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Router /reports/faculty/{id}/criteria [get]
func (h *ReportHandler) CriterionSummaries(c *gin.Context) {
	summaries, err := h.service.CriterionSummaries(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries)
}

// PeriodSummaries godoc
// @Summary Per-period rating summary
// @Tags Reports
// @Produce json
// @Param id path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Router /reports/faculty/{id}/periods [get]
func (h *ReportHandler) PeriodSummaries(c *gin.Context) {
	summaries, err := h.service.PeriodSummaries(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries)
}

// DepartmentReport godoc
// @Summary Department rollup report
// @Description Deans are always scoped to their own department
// @Tags Reports
// @Produce json
// @Param department query string false "Department (admin only)"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports/department [get]
func (h *ReportHandler) DepartmentReport(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	report, err := h.service.DepartmentReport(c.Request.Context(), claims, c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}
