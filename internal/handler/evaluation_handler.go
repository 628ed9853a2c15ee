package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-eval-api/internal/models"
	"github.com/noah-isme/faculty-eval-api/internal/service"
	appErrors "github.com/noah-isme/faculty-eval-api/pkg/errors"
	"github.com/noah-isme/faculty-eval-api/pkg/response"
)

type evaluationService interface {
	SubmitStudent(ctx context.Context, claims *models.JWTClaims, req service.SubmitEvaluationRequest) (*models.Evaluation, error)
	SubmitSelf(ctx context.Context, claims *models.JWTClaims, req service.SubmitEvaluationRequest) (*models.Evaluation, error)
}

// EvaluationHandler accepts evaluation submissions.
type EvaluationHandler struct {
	service evaluationService
}

// NewEvaluationHandler creates a new handler.
func NewEvaluationHandler(svc evaluationService) *EvaluationHandler {
	return &EvaluationHandler{service: svc}
}

// Submit godoc
// @Summary Submit a student evaluation
// @Description Anonymous by policy; requires an open period and an enrollment edge
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body service.SubmitEvaluationRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /evaluations [post]
func (h *EvaluationHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SubmitEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "All required fields must be filled"))
		return
	}

	evaluation, err := h.service.SubmitStudent(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(http.StatusCreated, response.Envelope{
		Success: true,
		Message: "Evaluation submitted successfully",
		Data:    evaluation,
	})
}

// SubmitSelf godoc
// @Summary Submit a faculty self-evaluation
// @Description Never anonymous; bypasses the period gate
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body service.SubmitEvaluationRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /evaluations/self [post]
func (h *EvaluationHandler) SubmitSelf(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SubmitEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "All required fields must be filled"))
		return
	}

	evaluation, err := h.service.SubmitSelf(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(http.StatusCreated, response.Envelope{
		Success: true,
		Message: "Self-evaluation submitted successfully",
		Data:    evaluation,
	})
}
