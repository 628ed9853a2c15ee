package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-eval-api/internal/models"
	appErrors "github.com/noah-isme/faculty-eval-api/pkg/errors"
)

type facultyRepository interface {
	List(ctx context.Context, filter models.FacultyFilter) ([]models.FacultyDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.FacultyDetail, error)
	FindByUserID(ctx context.Context, userID string) (*models.FacultyDetail, error)
}

type departmentResolver interface {
	FindDepartmentByID(ctx context.Context, id string) (*models.Department, error)
}

// FacultyService serves faculty listings and lookups.
type FacultyService struct {
	repo        facultyRepository
	departments departmentResolver
	logger      *zap.Logger
}

// NewFacultyService constructs a FacultyService.
func NewFacultyService(repo facultyRepository, departments departmentResolver, logger *zap.Logger) *FacultyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyService{repo: repo, departments: departments, logger: logger}
}

// List returns faculty matching the filter. For DEAN callers the department
// filter is always replaced with the dean's own department regardless of
// what the client sent; this is tenant isolation, not a default.
func (s *FacultyService) List(ctx context.Context, filter models.FacultyFilter, claims *models.JWTClaims) ([]models.FacultyDetail, *models.Pagination, error) {
	if claims != nil && claims.Role == models.RoleDean {
		deptName, err := s.resolveDepartmentName(ctx, claims.DepartmentID)
		if err != nil {
			return nil, nil, err
		}
		filter.Department = deptName
	} else if filter.Department != "" {
		filter.Department = models.NormalizeDepartment(filter.Department)
	}

	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return list, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one faculty member with identity context.
func (s *FacultyService) Get(ctx context.Context, id string) (*models.FacultyDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	return detail, nil
}

// GetByUserID resolves the faculty profile behind a user identity.
func (s *FacultyService) GetByUserID(ctx context.Context, userID string) (*models.FacultyDetail, error) {
	detail, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty profile")
	}
	return detail, nil
}

// resolveDepartmentName maps the department id carried in the dean's claims
// to the canonical name the listing query filters on.
func (s *FacultyService) resolveDepartmentName(ctx context.Context, departmentID string) (string, error) {
	if departmentID == "" {
		return "", appErrors.Clone(appErrors.ErrForbidden, "dean account has no department")
	}
	dept, err := s.departments.FindDepartmentByID(ctx, departmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrForbidden, "dean account has no department")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve department")
	}
	return dept.Name, nil
}
