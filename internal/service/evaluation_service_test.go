package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/faculty-eval-api/internal/models"
	"github.com/noah-isme/faculty-eval-api/internal/repository"
	appErrors "github.com/noah-isme/faculty-eval-api/pkg/errors"
)

type mockEvaluationRepo struct {
	studentDuplicate bool
	selfDuplicate    bool
	createErr        error
	created          *models.Evaluation
	createdResponses []models.EvaluationResponse
}

func (m *mockEvaluationRepo) ExistsStudentSubmission(ctx context.Context, studentID, facultyID, subjectID, semester, academicYear string) (bool, error) {
	return m.studentDuplicate, nil
}

func (m *mockEvaluationRepo) ExistsSelfSubmission(ctx context.Context, facultyID, subjectID, semester, academicYear string) (bool, error) {
	return m.selfDuplicate, nil
}

func (m *mockEvaluationRepo) CreateWithResponses(ctx context.Context, evaluation *models.Evaluation, responses []models.EvaluationResponse) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = evaluation
	m.createdResponses = responses
	return nil
}

type mockFacultyResolver struct {
	byID     *models.FacultyDetail
	byUserID *models.FacultyDetail
}

func (m *mockFacultyResolver) FindByID(ctx context.Context, id string) (*models.FacultyDetail, error) {
	if m.byID == nil {
		return nil, sql.ErrNoRows
	}
	return m.byID, nil
}

func (m *mockFacultyResolver) FindByUserID(ctx context.Context, userID string) (*models.FacultyDetail, error) {
	if m.byUserID == nil {
		return nil, sql.ErrNoRows
	}
	return m.byUserID, nil
}

type mockStudentResolver struct {
	student *models.StudentDetail
}

func (m *mockStudentResolver) FindByUserID(ctx context.Context, userID string) (*models.StudentDetail, error) {
	if m.student == nil {
		return nil, sql.ErrNoRows
	}
	return m.student, nil
}

type mockEnrollmentChecker struct {
	enrolled bool
}

func (m *mockEnrollmentChecker) Exists(ctx context.Context, studentID, facultyID, subjectID string) (bool, error) {
	return m.enrolled, nil
}

type mockGate struct {
	gate *models.PeriodGate
}

func (m *mockGate) Gate(ctx context.Context) (*models.PeriodGate, error) {
	return m.gate, nil
}

type mockCriteriaLister struct {
	criteria []models.Criterion
}

func (m *mockCriteriaLister) ListActive(ctx context.Context) ([]models.Criterion, error) {
	return m.criteria, nil
}

type mockSubmissionMetrics struct {
	outcomes map[string]int
}

func (m *mockSubmissionMetrics) RecordSubmission(kind, outcome string) {
	if m.outcomes == nil {
		m.outcomes = make(map[string]int)
	}
	m.outcomes[kind+"/"+outcome]++
}

type mockInvalidator struct {
	patterns []string
}

func (m *mockInvalidator) Invalidate(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return nil
}

func openGate() *mockGate {
	return &mockGate{gate: &models.PeriodGate{
		Open:  true,
		State: models.PeriodStateOpen,
		Schedule: &models.EvaluationPeriod{
			ID:           "p1",
			Semester:     "1st",
			AcademicYear: "2025-2026",
			IsActive:     true,
		},
	}}
}

func closedGate(reason string) *mockGate {
	return &mockGate{gate: &models.PeriodGate{Open: false, State: models.PeriodStateClosed, Reason: reason}}
}

func facultyDetail() *models.FacultyDetail {
	dept := "School of Technology"
	deptID := "dept-sot"
	return &models.FacultyDetail{
		Faculty:        models.Faculty{ID: "f1", UserID: "fu1"},
		FullName:       "Dr. Reyes",
		DepartmentID:   &deptID,
		DepartmentName: &dept,
	}
}

func studentDetail() *models.StudentDetail {
	return &models.StudentDetail{Student: models.Student{ID: "s1", UserID: "su1"}}
}

func activeCriteria() []models.Criterion {
	return []models.Criterion{
		{ID: "c1", Category: "Teaching", Criterion: "Explains clearly", Active: true, SortOrder: 1},
		{ID: "c2", Category: "Teaching", Criterion: "Starts on time", Active: true, SortOrder: 2},
	}
}

func newEvaluationService(repo *mockEvaluationRepo, faculty *mockFacultyResolver, students *mockStudentResolver, enrolled *mockEnrollmentChecker, gate *mockGate, metrics *mockSubmissionMetrics, cache *mockInvalidator) *EvaluationService {
	var invalidator reportCacheInvalidator
	if cache != nil {
		invalidator = cache
	}
	var recorder submissionMetrics
	if metrics != nil {
		recorder = metrics
	}
	return NewEvaluationService(repo, faculty, students, enrolled, gate, &mockCriteriaLister{criteria: activeCriteria()}, invalidator, recorder, nil)
}

func studentClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "su1", Role: models.RoleStudent}
}

func facultyClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "fu1", Role: models.RoleFaculty}
}

func TestSubmitStudentForcesAnonymityAndActivePeriod(t *testing.T) {
	repo := &mockEvaluationRepo{}
	metrics := &mockSubmissionMetrics{}
	cache := &mockInvalidator{}
	svc := newEvaluationService(repo, &mockFacultyResolver{byID: facultyDetail()}, &mockStudentResolver{student: studentDetail()}, &mockEnrollmentChecker{enrolled: true}, openGate(), metrics, cache)

	evaluation, err := svc.SubmitStudent(context.Background(), studentClaims(), SubmitEvaluationRequest{
		FacultyID:    "f1",
		SubjectID:    "sub1",
		Semester:     "2nd",
		AcademicYear: "2030-2031",
		Responses: []ResponseInput{
			{CriterionID: "c1", Rating: 5},
			{CriterionID: "c2", Rating: 3},
		},
	})
	require.NoError(t, err)
	assert.True(t, evaluation.IsAnonymous)
	assert.False(t, evaluation.IsSelf)
	assert.Equal(t, "1st", evaluation.Semester)
	assert.Equal(t, "2025-2026", evaluation.AcademicYear)
	require.NotNil(t, evaluation.StudentID)
	assert.Equal(t, "s1", *evaluation.StudentID)
	assert.Len(t, repo.createdResponses, 2)
	assert.Equal(t, 1, metrics.outcomes["student/accepted"])
	assert.Contains(t, cache.patterns, "reports:faculty:f1:*")
	assert.Contains(t, cache.patterns, "reports:department:School of Technology")
}

func TestSubmitStudentClosedPeriod(t *testing.T) {
	repo := &mockEvaluationRepo{}
	metrics := &mockSubmissionMetrics{}
	svc := newEvaluationService(repo, &mockFacultyResolver{byID: facultyDetail()}, &mockStudentResolver{student: studentDetail()}, &mockEnrollmentChecker{enrolled: true}, closedGate("The evaluation period has ended"), metrics, nil)

	_, err := svc.SubmitStudent(context.Background(), studentClaims(), SubmitEvaluationRequest{FacultyID: "f1", SubjectID: "sub1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPeriodClosed.Code, appErr.Code)
	assert.Equal(t, "The evaluation period has ended", appErr.Message)
	assert.Equal(t, 1, metrics.outcomes["student/rejected"])
	assert.Nil(t, repo.created)
}

func TestSubmitStudentClosedPeriodWithoutReason(t *testing.T) {
	gate := &mockGate{gate: &models.PeriodGate{Open: false, State: models.PeriodStateClosed}}
	svc := newEvaluationService(&mockEvaluationRepo{}, &mockFacultyResolver{byID: facultyDetail()}, &mockStudentResolver{student: studentDetail()}, &mockEnrollmentChecker{enrolled: true}, gate, nil, nil)

	_, err := svc.SubmitStudent(context.Background(), studentClaims(), SubmitEvaluationRequest{FacultyID: "f1", SubjectID: "sub1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPeriodClosed.Code, appErr.Code)
	assert.Equal(t, "Evaluation period is not active", appErr.Message)
}

func TestSubmitStudentMissingFields(t *testing.T) {
	svc := newEvaluationService(&mockEvaluationRepo{}, &mockFacultyResolver{byID: facultyDetail()}, &mockStudentResolver{student: studentDetail()}, &mockEnrollmentChecker{enrolled: true}, openGate(), nil, nil)

	_, err := svc.SubmitStudent(context.Background(), studentClaims(), SubmitEvaluationRequest{SubjectID: "sub1"})
	require.Error(t, err)
	assert.Equal(t, "All required fields must be filled", appErrors.FromError(err).Message)
}

func TestSubmitStudentNotEnrolled(t *testing.T) {
	svc := newEvaluationService(&mockEvaluationRepo{}, &mockFacultyResolver{byID: facultyDetail()}, &mockStudentResolver{student: studentDetail()}, &mockEnrollmentChecker{enrolled: false}, openGate(), nil, nil)

	_, err := svc.SubmitStudent(context.Background(), studentClaims(), SubmitEvaluationRequest{FacultyID: "f1", SubjectID: "sub1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "You can only evaluate faculty for your enrolled subjects.", appErr.Message)
	assert.Equal(t, appErrors.ErrForbidden.Status, appErr.Status)
}

func TestSubmitStudentUnknownFaculty(t *testing.T) {
	svc := newEvaluationService(&mockEvaluationRepo{}, &mockFacultyResolver{}, &mockStudentResolver{student: studentDetail()}, &mockEnrollmentChecker{enrolled: true}, openGate(), nil, nil)

	_, err := svc.SubmitStudent(context.Background(), studentClaims(), SubmitEvaluationRequest{FacultyID: "ghost", SubjectID: "sub1"})
	require.Error(t, err)
	assert.Equal(t, "Invalid faculty selection", appErrors.FromError(err).Message)
}

func TestSubmitStudentDuplicate(t *testing.T) {
	repo := &mockEvaluationRepo{studentDuplicate: true}
	metrics := &mockSubmissionMetrics{}
	svc := newEvaluationService(repo, &mockFacultyResolver{byID: facultyDetail()}, &mockStudentResolver{student: studentDetail()}, &mockEnrollmentChecker{enrolled: true}, openGate(), metrics, nil)

	_, err := svc.SubmitStudent(context.Background(), studentClaims(), SubmitEvaluationRequest{FacultyID: "f1", SubjectID: "sub1"})
	require.Error(t, err)
	assert.Equal(t, "You have already evaluated this faculty for this subject and semester.", appErrors.FromError(err).Message)
	assert.Equal(t, 1, metrics.outcomes["student/duplicate"])
}

func TestSubmitStudentDuplicateRace(t *testing.T) {
	repo := &mockEvaluationRepo{createErr: repository.ErrDuplicateSubmission}
	svc := newEvaluationService(repo, &mockFacultyResolver{byID: facultyDetail()}, &mockStudentResolver{student: studentDetail()}, &mockEnrollmentChecker{enrolled: true}, openGate(), nil, nil)

	_, err := svc.SubmitStudent(context.Background(), studentClaims(), SubmitEvaluationRequest{FacultyID: "f1", SubjectID: "sub1"})
	require.Error(t, err)
	assert.Equal(t, "You have already evaluated this faculty for this subject and semester.", appErrors.FromError(err).Message)
}

func TestSubmitStudentSkipsInvalidRatings(t *testing.T) {
	repo := &mockEvaluationRepo{}
	svc := newEvaluationService(repo, &mockFacultyResolver{byID: facultyDetail()}, &mockStudentResolver{student: studentDetail()}, &mockEnrollmentChecker{enrolled: true}, openGate(), nil, nil)

	_, err := svc.SubmitStudent(context.Background(), studentClaims(), SubmitEvaluationRequest{
		FacultyID: "f1",
		SubjectID: "sub1",
		Responses: []ResponseInput{
			{CriterionID: "c1", Rating: 0},
			{CriterionID: "c1", Rating: 6},
			{CriterionID: "retired", Rating: 4},
			{CriterionID: "c2", Rating: 4},
		},
	})
	require.NoError(t, err)
	require.Len(t, repo.createdResponses, 1)
	assert.Equal(t, "c2", repo.createdResponses[0].CriterionID)
}

func TestSubmitSelfBypassesGateAndKeepsIdentity(t *testing.T) {
	repo := &mockEvaluationRepo{}
	metrics := &mockSubmissionMetrics{}
	svc := newEvaluationService(repo, &mockFacultyResolver{byUserID: facultyDetail()}, &mockStudentResolver{}, &mockEnrollmentChecker{}, closedGate("No evaluation period is currently active"), metrics, nil)

	evaluation, err := svc.SubmitSelf(context.Background(), facultyClaims(), SubmitEvaluationRequest{
		SubjectID:    "sub1",
		Semester:     "2nd",
		AcademicYear: "2025-2026",
		Responses:    []ResponseInput{{CriterionID: "c1", Rating: 4}},
	})
	require.NoError(t, err)
	assert.False(t, evaluation.IsAnonymous)
	assert.True(t, evaluation.IsSelf)
	assert.Nil(t, evaluation.StudentID)
	assert.Equal(t, "2nd", evaluation.Semester)
	assert.Equal(t, 1, metrics.outcomes["self/accepted"])
}

func TestSubmitSelfMissingFields(t *testing.T) {
	svc := newEvaluationService(&mockEvaluationRepo{}, &mockFacultyResolver{byUserID: facultyDetail()}, &mockStudentResolver{}, &mockEnrollmentChecker{}, openGate(), nil, nil)

	_, err := svc.SubmitSelf(context.Background(), facultyClaims(), SubmitEvaluationRequest{SubjectID: "sub1"})
	require.Error(t, err)
	assert.Equal(t, "All required fields must be filled", appErrors.FromError(err).Message)
}

func TestSubmitSelfForeignFacultyRejected(t *testing.T) {
	svc := newEvaluationService(&mockEvaluationRepo{}, &mockFacultyResolver{byUserID: facultyDetail()}, &mockStudentResolver{}, &mockEnrollmentChecker{}, openGate(), nil, nil)

	_, err := svc.SubmitSelf(context.Background(), facultyClaims(), SubmitEvaluationRequest{
		FacultyID:    "someone-else",
		SubjectID:    "sub1",
		Semester:     "1st",
		AcademicYear: "2025-2026",
	})
	require.Error(t, err)
	assert.Equal(t, "Invalid faculty selection for self-evaluation", appErrors.FromError(err).Message)
}

func TestSubmitSelfDuplicate(t *testing.T) {
	repo := &mockEvaluationRepo{selfDuplicate: true}
	svc := newEvaluationService(repo, &mockFacultyResolver{byUserID: facultyDetail()}, &mockStudentResolver{}, &mockEnrollmentChecker{}, openGate(), nil, nil)

	_, err := svc.SubmitSelf(context.Background(), facultyClaims(), SubmitEvaluationRequest{
		SubjectID:    "sub1",
		Semester:     "1st",
		AcademicYear: "2025-2026",
	})
	require.Error(t, err)
	assert.Equal(t, "You have already submitted a self-evaluation for this subject and semester.", appErrors.FromError(err).Message)
}
