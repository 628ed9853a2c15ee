package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-eval-api/internal/models"
	appErrors "github.com/noah-isme/faculty-eval-api/pkg/errors"
)

type periodRepository interface {
	List(ctx context.Context) ([]models.EvaluationPeriod, error)
	FindByID(ctx context.Context, id string) (*models.EvaluationPeriod, error)
	FindActive(ctx context.Context) (*models.EvaluationPeriod, error)
	Create(ctx context.Context, period *models.EvaluationPeriod) error
	Activate(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
}

// CreatePeriodRequest is the admin payload for scheduling a period.
type CreatePeriodRequest struct {
	Semester     string     `json:"semester" validate:"required"`
	AcademicYear string     `json:"academic_year" validate:"required"`
	StartsAt     *time.Time `json:"starts_at"`
	EndsAt       *time.Time `json:"ends_at"`
	Activate     bool       `json:"activate"`
}

// PeriodService manages evaluation periods and the submission gate.
type PeriodService struct {
	repo      periodRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPeriodService constructs a PeriodService.
func NewPeriodService(repo periodRepository, validate *validator.Validate, logger *zap.Logger) *PeriodService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PeriodService{repo: repo, validator: validate, logger: logger}
}

// Gate reports whether student submission is currently allowed. The gate is
// closed when no period is active or when the active period's window has not
// started or has already ended. Self-evaluations do not consult the gate.
func (s *PeriodService) Gate(ctx context.Context) (*models.PeriodGate, error) {
	period, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.PeriodGate{
				Open:   false,
				State:  models.PeriodStateClosed,
				Reason: "No evaluation period is currently active",
			}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active period")
	}

	now := time.Now().UTC()
	if period.StartsAt != nil && now.Before(*period.StartsAt) {
		return &models.PeriodGate{
			Open:     false,
			State:    models.PeriodStateClosed,
			Reason:   "The evaluation period has not started yet",
			Schedule: period,
		}, nil
	}
	if period.EndsAt != nil && now.After(*period.EndsAt) {
		return &models.PeriodGate{
			Open:     false,
			State:    models.PeriodStateClosed,
			Reason:   "The evaluation period has ended",
			Schedule: period,
		}, nil
	}

	return &models.PeriodGate{
		Open:     true,
		State:    models.PeriodStateOpen,
		Schedule: period,
	}, nil
}

// Active returns the active period, or a typed not-found error when the gate
// is closed.
func (s *PeriodService) Active(ctx context.Context) (*models.EvaluationPeriod, error) {
	period, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrPeriodClosed
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active period")
	}
	return period, nil
}

// List returns every known period, newest first.
func (s *PeriodService) List(ctx context.Context) ([]models.EvaluationPeriod, error) {
	periods, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list periods")
	}
	return periods, nil
}

// Create schedules a new period and optionally activates it immediately.
func (s *PeriodService) Create(ctx context.Context, req CreatePeriodRequest) (*models.EvaluationPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid period payload")
	}
	if req.StartsAt != nil && req.EndsAt != nil && !req.EndsAt.After(*req.StartsAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "period end must be after its start")
	}

	period := &models.EvaluationPeriod{
		Semester:     req.Semester,
		AcademicYear: req.AcademicYear,
		StartsAt:     req.StartsAt,
		EndsAt:       req.EndsAt,
	}
	if err := s.repo.Create(ctx, period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create period")
	}

	if req.Activate {
		if err := s.repo.Activate(ctx, period.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate period")
		}
		period.IsActive = true
	}
	return period, nil
}

// Activate opens the given period, closing any other.
func (s *PeriodService) Activate(ctx context.Context, id string) (*models.EvaluationPeriod, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}
	if err := s.repo.Activate(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate period")
	}
	return s.repo.FindByID(ctx, id)
}

// Deactivate closes the given period.
func (s *PeriodService) Deactivate(ctx context.Context, id string) error {
	period, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}
	if !period.IsActive {
		return nil
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate period")
	}
	return nil
}
