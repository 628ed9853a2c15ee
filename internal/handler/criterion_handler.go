package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-eval-api/internal/service"
	"github.com/noah-isme/faculty-eval-api/pkg/response"
)

// CriterionHandler serves the evaluation rubric.
type CriterionHandler struct {
	service *service.CriterionService
}

// NewCriterionHandler creates a new handler.
func NewCriterionHandler(svc *service.CriterionService) *CriterionHandler {
	return &CriterionHandler{service: svc}
}

// List godoc
// @Summary List active evaluation criteria
// @Tags Criteria
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /criteria [get]
func (h *CriterionHandler) List(c *gin.Context) {
	criteria, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, criteria)
}
