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

type mockFacultyRepo struct {
	list       []models.FacultyDetail
	total      int
	byID       *models.FacultyDetail
	lastFilter models.FacultyFilter
}

func (m *mockFacultyRepo) List(ctx context.Context, filter models.FacultyFilter) ([]models.FacultyDetail, int, error) {
	m.lastFilter = filter
	return m.list, m.total, nil
}

func (m *mockFacultyRepo) FindByID(ctx context.Context, id string) (*models.FacultyDetail, error) {
	if m.byID == nil {
		return nil, sql.ErrNoRows
	}
	return m.byID, nil
}

func (m *mockFacultyRepo) FindByUserID(ctx context.Context, userID string) (*models.FacultyDetail, error) {
	if m.byID == nil {
		return nil, sql.ErrNoRows
	}
	return m.byID, nil
}

type mockDepartmentResolver struct {
	department *models.Department
}

func (m *mockDepartmentResolver) FindDepartmentByID(ctx context.Context, id string) (*models.Department, error) {
	if m.department == nil {
		return nil, sql.ErrNoRows
	}
	return m.department, nil
}

func TestListForcesDeanDepartment(t *testing.T) {
	repo := &mockFacultyRepo{total: 3}
	departments := &mockDepartmentResolver{department: &models.Department{ID: "dept-sot", Name: "School of Technology", Acronym: "SOT"}}
	svc := NewFacultyService(repo, departments, nil)

	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleDean, DepartmentID: "dept-sot"}
	_, pagination, err := svc.List(context.Background(), models.FacultyFilter{Department: "School of Business"}, claims)
	require.NoError(t, err)
	assert.Equal(t, "School of Technology", repo.lastFilter.Department)
	assert.Equal(t, 3, pagination.TotalCount)
}

func TestListDeanWithoutDepartment(t *testing.T) {
	svc := NewFacultyService(&mockFacultyRepo{}, &mockDepartmentResolver{}, nil)

	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleDean}
	_, _, err := svc.List(context.Background(), models.FacultyFilter{}, claims)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Status, appErrors.FromError(err).Status)
}

func TestListNormalizesAcronymForAdmin(t *testing.T) {
	repo := &mockFacultyRepo{}
	svc := NewFacultyService(repo, &mockDepartmentResolver{}, nil)

	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}
	_, _, err := svc.List(context.Background(), models.FacultyFilter{Department: "SOT"}, claims)
	require.NoError(t, err)
	assert.Equal(t, "School of Technology", repo.lastFilter.Department)
}

func TestGetFacultyNotFound(t *testing.T) {
	svc := NewFacultyService(&mockFacultyRepo{}, &mockDepartmentResolver{}, nil)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
