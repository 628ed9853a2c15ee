package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-eval-api/internal/models"
	appErrors "github.com/noah-isme/faculty-eval-api/pkg/errors"
)

type reportRepository interface {
	FacultySummary(ctx context.Context, facultyID string) (*models.FacultySummary, error)
	CriterionSummaries(ctx context.Context, facultyID string) ([]models.CriterionSummary, error)
	PeriodSummaries(ctx context.Context, facultyID string) ([]models.PeriodSummary, error)
	DepartmentCounts(ctx context.Context, departmentName string) (students, faculty, newSignups, evaluations int, err error)
	ProgramDistribution(ctx context.Context, departmentName string) ([]models.DistributionEntry, error)
	YearLevelDistribution(ctx context.Context, departmentName string) ([]models.DistributionEntry, error)
	EnrollmentTrend(ctx context.Context, departmentName string) ([]models.TrendPoint, error)
	DepartmentFacultySummaries(ctx context.Context, departmentName string) ([]models.FacultySummary, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ReportService serves read-only aggregation projections, cached in Redis
// when available. Cache failures degrade to live queries.
type ReportService struct {
	repo        reportRepository
	departments departmentResolver
	cache       reportCache
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(repo reportRepository, departments departmentResolver, cache reportCache, cacheTTL time.Duration, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ReportService{repo: repo, departments: departments, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// FacultySummary returns the overall rating aggregate for one faculty.
func (s *ReportService) FacultySummary(ctx context.Context, facultyID string) (*models.FacultySummary, error) {
	key := fmt.Sprintf("reports:faculty:%s:summary", facultyID)
	var cached models.FacultySummary
	if hit, _ := s.cacheGet(ctx, key, &cached); hit {
		return &cached, nil
	}

	summary, err := s.repo.FacultySummary(ctx, facultyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build summary")
	}
	s.cacheSet(ctx, key, summary)
	return summary, nil
}

// CriterionSummaries returns per-rubric-item aggregates for one faculty.
func (s *ReportService) CriterionSummaries(ctx context.Context, facultyID string) ([]models.CriterionSummary, error) {
	key := fmt.Sprintf("reports:faculty:%s:criteria", facultyID)
	var cached []models.CriterionSummary
	if hit, _ := s.cacheGet(ctx, key, &cached); hit {
		return cached, nil
	}

	summaries, err := s.repo.CriterionSummaries(ctx, facultyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build criterion summaries")
	}
	s.cacheSet(ctx, key, summaries)
	return summaries, nil
}

// PeriodSummaries returns per-period aggregates for one faculty.
func (s *ReportService) PeriodSummaries(ctx context.Context, facultyID string) ([]models.PeriodSummary, error) {
	key := fmt.Sprintf("reports:faculty:%s:periods", facultyID)
	var cached []models.PeriodSummary
	if hit, _ := s.cacheGet(ctx, key, &cached); hit {
		return cached, nil
	}

	summaries, err := s.repo.PeriodSummaries(ctx, facultyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build period summaries")
	}
	s.cacheSet(ctx, key, summaries)
	return summaries, nil
}

// DepartmentReport builds the dean/admin rollup. DEAN callers are always
// scoped to their own department; the requested department parameter is
// honored for ADMIN only.
func (s *ReportService) DepartmentReport(ctx context.Context, claims *models.JWTClaims, requested string) (*models.DepartmentReport, error) {
	departmentName, err := s.resolveScope(ctx, claims, requested)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("reports:department:%s", departmentName)
	var cached models.DepartmentReport
	if hit, _ := s.cacheGet(ctx, key, &cached); hit {
		return &cached, nil
	}

	students, faculty, signups, evaluations, err := s.repo.DepartmentCounts(ctx, departmentName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build department counts")
	}
	programs, err := s.repo.ProgramDistribution(ctx, departmentName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build program distribution")
	}
	yearLevels, err := s.repo.YearLevelDistribution(ctx, departmentName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build year level distribution")
	}
	trend, err := s.repo.EnrollmentTrend(ctx, departmentName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build enrollment trend")
	}
	summaries, err := s.repo.DepartmentFacultySummaries(ctx, departmentName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build faculty summaries")
	}

	report := &models.DepartmentReport{
		Department:       departmentName,
		StudentCount:     students,
		FacultyCount:     faculty,
		NewSignups30d:    signups,
		TotalEvaluations: evaluations,
		Programs:         programs,
		YearLevels:       yearLevels,
		EnrollmentTrend:  trend,
		FacultySummaries: summaries,
		GeneratedAt:      time.Now().UTC(),
	}
	s.cacheSet(ctx, key, report)
	return report, nil
}

func (s *ReportService) resolveScope(ctx context.Context, claims *models.JWTClaims, requested string) (string, error) {
	if claims != nil && claims.Role == models.RoleDean {
		if claims.DepartmentID == "" {
			return "", appErrors.Clone(appErrors.ErrForbidden, "dean account has no department")
		}
		dept, err := s.departments.FindDepartmentByID(ctx, claims.DepartmentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return "", appErrors.Clone(appErrors.ErrForbidden, "dean account has no department")
			}
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve department")
		}
		return dept.Name, nil
	}
	if requested == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "department is required")
	}
	return models.NormalizeDepartment(requested), nil
}

func (s *ReportService) cacheGet(ctx context.Context, key string, dest interface{}) (bool, error) {
	if s.cache == nil {
		return false, nil
	}
	return s.cache.Get(ctx, key, dest)
}

func (s *ReportService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
