package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-eval-api/internal/models"
)

// PeriodRepository handles persistence for evaluation periods.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository constructs the repository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

const periodColumns = `id, semester, academic_year, starts_at, ends_at, is_active, created_at`

// List returns all periods, newest first.
func (r *PeriodRepository) List(ctx context.Context) ([]models.EvaluationPeriod, error) {
	query := fmt.Sprintf(`SELECT %s FROM evaluation_periods ORDER BY created_at DESC`, periodColumns)
	var periods []models.EvaluationPeriod
	if err := r.db.SelectContext(ctx, &periods, query); err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	return periods, nil
}

// FindByID loads a period by identifier.
func (r *PeriodRepository) FindByID(ctx context.Context, id string) (*models.EvaluationPeriod, error) {
	query := fmt.Sprintf(`SELECT %s FROM evaluation_periods WHERE id = $1`, periodColumns)
	var period models.EvaluationPeriod
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		return nil, err
	}
	return &period, nil
}

// FindActive returns the single active period. sql.ErrNoRows signals that no
// period is open; the partial unique index guarantees at most one row.
func (r *PeriodRepository) FindActive(ctx context.Context) (*models.EvaluationPeriod, error) {
	query := fmt.Sprintf(`SELECT %s FROM evaluation_periods WHERE is_active`, periodColumns)
	var period models.EvaluationPeriod
	if err := r.db.GetContext(ctx, &period, query); err != nil {
		return nil, err
	}
	return &period, nil
}

// Create persists a new period.
func (r *PeriodRepository) Create(ctx context.Context, period *models.EvaluationPeriod) error {
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	if period.CreatedAt.IsZero() {
		period.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO evaluation_periods (id, semester, academic_year, starts_at, ends_at, is_active, created_at)
        VALUES (:id, :semester, :academic_year, :starts_at, :ends_at, :is_active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("create period: %w", err)
	}
	return nil
}

// Activate opens one period and closes every other inside a transaction,
// preserving the single-active invariant.
func (r *PeriodRepository) Activate(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE evaluation_periods SET is_active = FALSE WHERE is_active`); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("deactivate periods: %w", err)
	}
	result, err := tx.ExecContext(ctx, `UPDATE evaluation_periods SET is_active = TRUE WHERE id = $1`, id)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("activate period: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("activate period: no such period %s", id)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit period activation: %w", err)
	}
	return nil
}

// Deactivate closes the currently active period.
func (r *PeriodRepository) Deactivate(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE evaluation_periods SET is_active = FALSE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deactivate period: %w", err)
	}
	return nil
}
