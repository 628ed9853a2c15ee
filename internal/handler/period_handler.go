package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-eval-api/internal/service"
	appErrors "github.com/noah-isme/faculty-eval-api/pkg/errors"
	"github.com/noah-isme/faculty-eval-api/pkg/response"
)

// PeriodHandler exposes evaluation period endpoints.
type PeriodHandler struct {
	service *service.PeriodService
}

// NewPeriodHandler creates a new handler.
func NewPeriodHandler(svc *service.PeriodService) *PeriodHandler {
	return &PeriodHandler{service: svc}
}

// Active godoc
// @Summary Get the active evaluation period
// @Tags Periods
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /periods/active [get]
func (h *PeriodHandler) Active(c *gin.Context) {
	period, err := h.service.Active(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period)
}

// Gate godoc
// @Summary Report whether submission is currently open
// @Tags Periods
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /periods/gate [get]
func (h *PeriodHandler) Gate(c *gin.Context) {
	gate, err := h.service.Gate(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gate)
}

// List godoc
// @Summary List evaluation periods
// @Tags Periods
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /periods [get]
func (h *PeriodHandler) List(c *gin.Context) {
	periods, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods)
}

// Create godoc
// @Summary Schedule an evaluation period
// @Tags Periods
// @Accept json
// @Produce json
// @Param payload body service.CreatePeriodRequest true "Period payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /periods [post]
func (h *PeriodHandler) Create(c *gin.Context) {
	var req service.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid period payload"))
		return
	}

	period, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, period)
}

// Activate godoc
// @Summary Activate an evaluation period
// @Tags Periods
// @Produce json
// @Param id path string true "Period ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /periods/{id}/activate [put]
func (h *PeriodHandler) Activate(c *gin.Context) {
	period, err := h.service.Activate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period)
}

// Deactivate godoc
// @Summary Deactivate an evaluation period
// @Tags Periods
// @Produce json
// @Param id path string true "Period ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /periods/{id}/deactivate [put]
func (h *PeriodHandler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
