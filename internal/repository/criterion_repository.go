package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-eval-api/internal/models"
)

// CriterionRepository reads the evaluation rubric.
type CriterionRepository struct {
	db *sqlx.DB
}

// NewCriterionRepository constructs the repository.
func NewCriterionRepository(db *sqlx.DB) *CriterionRepository {
	return &CriterionRepository{db: db}
}

// ListActive returns the rubric items offered to evaluators, in form order.
func (r *CriterionRepository) ListActive(ctx context.Context) ([]models.Criterion, error) {
	const query = `SELECT id, category, criterion, active, sort_order FROM evaluation_criteria WHERE active ORDER BY sort_order, category`
	var criteria []models.Criterion
	if err := r.db.SelectContext(ctx, &criteria, query); err != nil {
		return nil, fmt.Errorf("list active criteria: %w", err)
	}
	return criteria, nil
}
