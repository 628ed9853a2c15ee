package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-eval-api/internal/models"
	appErrors "github.com/noah-isme/faculty-eval-api/pkg/errors"
)

type criterionRepository interface {
	ListActive(ctx context.Context) ([]models.Criterion, error)
}

// CriterionService serves the evaluation rubric.
type CriterionService struct {
	repo   criterionRepository
	logger *zap.Logger
}

// NewCriterionService constructs a CriterionService.
func NewCriterionService(repo criterionRepository, logger *zap.Logger) *CriterionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CriterionService{repo: repo, logger: logger}
}

// ListActive returns the rubric items offered on the evaluation form.
func (s *CriterionService) ListActive(ctx context.Context) ([]models.Criterion, error) {
	criteria, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list criteria")
	}
	return criteria, nil
}
