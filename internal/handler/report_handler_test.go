package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-eval-api/internal/middleware"
	"github.com/noah-isme/faculty-eval-api/internal/models"
	appErrors "github.com/noah-isme/faculty-eval-api/pkg/errors"
	"github.com/noah-isme/faculty-eval-api/pkg/response"
)

type fakeReportSrv struct {
	summary       *models.FacultySummary
	summaryErr    error
	criteria      []models.CriterionSummary
	periods       []models.PeriodSummary
	department    *models.DepartmentReport
	departmentErr error
	lastFacultyID string
	lastRequested string
}

func (f *fakeReportSrv) FacultySummary(_ context.Context, facultyID string) (*models.FacultySummary, error) {
	f.lastFacultyID = facultyID
	return f.summary, f.summaryErr
}

func (f *fakeReportSrv) CriterionSummaries(_ context.Context, facultyID string) ([]models.CriterionSummary, error) {
	f.lastFacultyID = facultyID
	return f.criteria, nil
}

func (f *fakeReportSrv) PeriodSummaries(_ context.Context, facultyID string) ([]models.PeriodSummary, error) {
	f.lastFacultyID = facultyID
	return f.periods, nil
}

func (f *fakeReportSrv) DepartmentReport(_ context.Context, _ *models.JWTClaims, requested string) (*models.DepartmentReport, error) {
	f.lastRequested = requested
	return f.department, f.departmentErr
}

func reportRequest(t *testing.T, target string, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, rec
}

func TestReportFacultySummary(t *testing.T) {
	avg := 4.2
	srv := &fakeReportSrv{summary: &models.FacultySummary{FacultyID: "f1", Count: 12, AverageRating: &avg, HasData: true}}
	handler := NewReportHandler(srv)
	c, rec := reportRequest(t, "/reports/faculty/f1/summary", nil)
	c.Params = gin.Params{{Key: "id", Value: "f1"}}

	handler.FacultySummary(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "f1", srv.lastFacultyID)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
}

func TestReportFacultySummaryNotFound(t *testing.T) {
	srv := &fakeReportSrv{summaryErr: appErrors.Clone(appErrors.ErrNotFound, "Faculty member not found")}
	handler := NewReportHandler(srv)
	c, rec := reportRequest(t, "/reports/faculty/ghost/summary", nil)
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}

	handler.FacultySummary(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "Faculty member not found", env.Message)
}

func TestReportCriterionSummaries(t *testing.T) {
	srv := &fakeReportSrv{criteria: []models.CriterionSummary{{Criterion: "Clarity of instruction", ResponseCount: 8, HasData: true}}}
	handler := NewReportHandler(srv)
	c, rec := reportRequest(t, "/reports/faculty/f1/criteria", nil)
	c.Params = gin.Params{{Key: "id", Value: "f1"}}

	handler.CriterionSummaries(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "f1", srv.lastFacultyID)
}

func TestReportDepartmentRequiresAuth(t *testing.T) {
	handler := NewReportHandler(&fakeReportSrv{})
	c, rec := reportRequest(t, "/reports/department", nil)

	handler.DepartmentReport(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReportDepartmentPassesQueryScope(t *testing.T) {
	srv := &fakeReportSrv{department: &models.DepartmentReport{Department: "School of Technology"}}
	handler := NewReportHandler(srv)
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}
	c, rec := reportRequest(t, "/reports/department?department=SOT", claims)

	handler.DepartmentReport(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SOT", srv.lastRequested)
}

func TestReportDepartmentForbiddenForUnscopedDean(t *testing.T) {
	srv := &fakeReportSrv{departmentErr: appErrors.Clone(appErrors.ErrForbidden, "No department is linked to this account")}
	handler := NewReportHandler(srv)
	claims := &models.JWTClaims{UserID: "u2", Role: models.RoleDean}
	c, rec := reportRequest(t, "/reports/department", claims)

	handler.DepartmentReport(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
