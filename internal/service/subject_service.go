package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-eval-api/internal/models"
	appErrors "github.com/noah-isme/faculty-eval-api/pkg/errors"
)

type subjectRepository interface {
	FindDepartmentByName(ctx context.Context, name string) (*models.Department, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]models.Subject, error)
	CountByDepartment(ctx context.Context, departmentID string) (int, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	BulkCreate(ctx context.Context, subjects []models.Subject) error
}

// defaultCatalog lists the subjects seeded for a department the first time
// its catalog is read while empty. Keyed by acronym.
var defaultCatalog = map[string][]string{
	"SOT": {
		"Introduction to Computing",
		"Computer Programming",
		"Data Structures and Algorithms",
		"Database Management Systems",
		"Software Engineering",
		"Information Assurance and Security",
	},
	"SOB": {
		"Principles of Management",
		"Financial Accounting",
		"Business Law and Taxation",
		"Marketing Management",
		"Entrepreneurial Mind",
	},
	"SOE": {
		"Foundations of Education",
		"Child and Adolescent Development",
		"Curriculum Development",
		"Assessment of Learning",
		"Educational Technology",
	},
	"SOHS": {
		"Anatomy and Physiology",
		"Fundamentals of Nursing",
		"Community Health Nursing",
		"Pharmacology",
		"Health Assessment",
	},
}

// SubjectService serves the subject catalog.
type SubjectService struct {
	repo   subjectRepository
	logger *zap.Logger
}

// NewSubjectService constructs a SubjectService.
func NewSubjectService(repo subjectRepository, logger *zap.Logger) *SubjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, logger: logger}
}

// ListByDepartment resolves the department from an acronym or full name and
// returns its catalog, seeding the defaults first when the catalog is empty.
func (s *SubjectService) ListByDepartment(ctx context.Context, department string) ([]models.Subject, error) {
	if department == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department is required")
	}
	canonical := models.NormalizeDepartment(department)

	dept, err := s.repo.FindDepartmentByName(ctx, canonical)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve department")
	}

	count, err := s.repo.CountByDepartment(ctx, dept.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect catalog")
	}
	if count == 0 {
		if err := s.seedDefaults(ctx, dept); err != nil {
			return nil, err
		}
	}

	subjects, err := s.repo.ListByDepartment(ctx, dept.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return subjects, nil
}

// Get loads a single subject.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

func (s *SubjectService) seedDefaults(ctx context.Context, dept *models.Department) error {
	names, ok := defaultCatalog[dept.Acronym]
	if !ok {
		return nil
	}
	subjects := make([]models.Subject, 0, len(names))
	for _, name := range names {
		subjects = append(subjects, models.Subject{
			DepartmentID: dept.ID,
			Name:         name,
		})
	}
	if err := s.repo.BulkCreate(ctx, subjects); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed subjects")
	}
	s.logger.Info("seeded default subject catalog",
		zap.String("department", dept.Name),
		zap.Int("count", len(subjects)))
	return nil
}
