package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-eval-api/internal/middleware"
	"github.com/noah-isme/faculty-eval-api/internal/models"
	"github.com/noah-isme/faculty-eval-api/internal/service"
	appErrors "github.com/noah-isme/faculty-eval-api/pkg/errors"
	"github.com/noah-isme/faculty-eval-api/pkg/response"
)

type fakeEvaluationSrv struct {
	studentResp *models.Evaluation
	studentErr  error
	selfResp    *models.Evaluation
	selfErr     error
	lastClaims  *models.JWTClaims
	lastReq     service.SubmitEvaluationRequest
}

func (f *fakeEvaluationSrv) SubmitStudent(_ context.Context, claims *models.JWTClaims, req service.SubmitEvaluationRequest) (*models.Evaluation, error) {
	f.lastClaims = claims
	f.lastReq = req
	return f.studentResp, f.studentErr
}

func (f *fakeEvaluationSrv) SubmitSelf(_ context.Context, claims *models.JWTClaims, req service.SubmitEvaluationRequest) (*models.Evaluation, error) {
	f.lastClaims = claims
	f.lastReq = req
	return f.selfResp, f.selfErr
}

func evaluationRequest(t *testing.T, body string, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/evaluations", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, rec
}

func studentClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "u1", Role: models.RoleStudent}
}

func TestEvaluationSubmitRequiresAuth(t *testing.T) {
	handler := NewEvaluationHandler(&fakeEvaluationSrv{})
	c, rec := evaluationRequest(t, `{}`, nil)

	handler.Submit(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEvaluationSubmitRejectsMalformedBody(t *testing.T) {
	handler := NewEvaluationHandler(&fakeEvaluationSrv{})
	c, rec := evaluationRequest(t, `{"faculty_id":`, studentClaims())

	handler.Submit(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "All required fields must be filled", env.Message)
}

func TestEvaluationSubmitSuccess(t *testing.T) {
	srv := &fakeEvaluationSrv{studentResp: &models.Evaluation{ID: "e1", FacultyID: "f1", IsAnonymous: true}}
	handler := NewEvaluationHandler(srv)
	body := `{"faculty_id":"f1","subject_id":"s1","responses":[{"criterion_id":"c1","rating":5}]}`
	c, rec := evaluationRequest(t, body, studentClaims())

	handler.Submit(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "u1", srv.lastClaims.UserID)
	assert.Equal(t, "f1", srv.lastReq.FacultyID)
	require.Len(t, srv.lastReq.Responses, 1)
	assert.Equal(t, 5, srv.lastReq.Responses[0].Rating)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "Evaluation submitted successfully", env.Message)
}

func TestEvaluationSubmitPropagatesServiceError(t *testing.T) {
	srv := &fakeEvaluationSrv{studentErr: appErrors.ErrDuplicateEvaluation}
	handler := NewEvaluationHandler(srv)
	c, rec := evaluationRequest(t, `{"faculty_id":"f1"}`, studentClaims())

	handler.Submit(c)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "You have already evaluated this faculty for this subject and semester.", env.Message)
}

func TestEvaluationSubmitSelfSuccess(t *testing.T) {
	srv := &fakeEvaluationSrv{selfResp: &models.Evaluation{ID: "e2", IsSelf: true}}
	handler := NewEvaluationHandler(srv)
	body := `{"faculty_id":"f1","subject_id":"s1","responses":[{"criterion_id":"c1","rating":4}]}`
	c, rec := evaluationRequest(t, body, &models.JWTClaims{UserID: "u2", Role: models.RoleFaculty})

	handler.SubmitSelf(c)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "Self-evaluation submitted successfully", env.Message)
}

func TestEvaluationSubmitSelfRejectsMalformedBody(t *testing.T) {
	handler := NewEvaluationHandler(&fakeEvaluationSrv{})
	c, rec := evaluationRequest(t, `not-json`, &models.JWTClaims{UserID: "u2", Role: models.RoleFaculty})

	handler.SubmitSelf(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
