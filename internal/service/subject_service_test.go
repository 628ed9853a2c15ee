package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-eval-api/internal/models"
	appErrors "github.com/noah-isme/faculty-eval-api/pkg/errors"
)

type mockSubjectRepo struct {
	department *models.Department
	subjects   []models.Subject
	count      int
	seeded     []models.Subject
}

func (m *mockSubjectRepo) FindDepartmentByName(ctx context.Context, name string) (*models.Department, error) {
	if m.department == nil || m.department.Name != name {
		return nil, sql.ErrNoRows
	}
	return m.department, nil
}

func (m *mockSubjectRepo) ListByDepartment(ctx context.Context, departmentID string) ([]models.Subject, error) {
	if len(m.seeded) > 0 {
		return m.seeded, nil
	}
	return m.subjects, nil
}

func (m *mockSubjectRepo) CountByDepartment(ctx context.Context, departmentID string) (int, error) {
	return m.count, nil
}

func (m *mockSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	return nil, sql.ErrNoRows
}

func (m *mockSubjectRepo) BulkCreate(ctx context.Context, subjects []models.Subject) error {
	m.seeded = subjects
	return nil
}

func TestListByDepartmentRequiresParameter(t *testing.T) {
	svc := NewSubjectService(&mockSubjectRepo{}, nil)

	_, err := svc.ListByDepartment(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, "department is required", appErrors.FromError(err).Message)
}

func TestListByDepartmentResolvesAcronym(t *testing.T) {
	repo := &mockSubjectRepo{
		department: &models.Department{ID: "dept-sot", Name: "School of Technology", Acronym: "SOT"},
		count:      2,
		subjects:   []models.Subject{{ID: "sub1", Name: "Computer Programming"}, {ID: "sub2", Name: "Software Engineering"}},
	}
	svc := NewSubjectService(repo, nil)

	subjects, err := svc.ListByDepartment(context.Background(), "SOT")
	require.NoError(t, err)
	assert.Len(t, subjects, 2)
	assert.Empty(t, repo.seeded)
}

func TestListByDepartmentSeedsEmptyCatalog(t *testing.T) {
	repo := &mockSubjectRepo{
		department: &models.Department{ID: "dept-sohs", Name: "School of Health Sciences", Acronym: "SOHS"},
		count:      0,
	}
	svc := NewSubjectService(repo, nil)

	subjects, err := svc.ListByDepartment(context.Background(), "School of Health Sciences")
	require.NoError(t, err)
	require.NotEmpty(t, repo.seeded)
	assert.Equal(t, "dept-sohs", repo.seeded[0].DepartmentID)
	assert.Len(t, subjects, len(repo.seeded))
}

func TestListByDepartmentUnknown(t *testing.T) {
	svc := NewSubjectService(&mockSubjectRepo{}, nil)

	_, err := svc.ListByDepartment(context.Background(), "School of Magic")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
