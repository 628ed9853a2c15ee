package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-eval-api/internal/models"
	"github.com/noah-isme/faculty-eval-api/internal/repository"
	appErrors "github.com/noah-isme/faculty-eval-api/pkg/errors"
)

type evaluationRepository interface {
	ExistsStudentSubmission(ctx context.Context, studentID, facultyID, subjectID, semester, academicYear string) (bool, error)
	ExistsSelfSubmission(ctx context.Context, facultyID, subjectID, semester, academicYear string) (bool, error)
	CreateWithResponses(ctx context.Context, evaluation *models.Evaluation, responses []models.EvaluationResponse) error
}

type facultyResolver interface {
	FindByID(ctx context.Context, id string) (*models.FacultyDetail, error)
	FindByUserID(ctx context.Context, userID string) (*models.FacultyDetail, error)
}

type enrollmentChecker interface {
	Exists(ctx context.Context, studentID, facultyID, subjectID string) (bool, error)
}

type submissionGate interface {
	Gate(ctx context.Context) (*models.PeriodGate, error)
}

type activeCriteriaLister interface {
	ListActive(ctx context.Context) ([]models.Criterion, error)
}

type submissionMetrics interface {
	RecordSubmission(kind, outcome string)
}

type reportCacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// ResponseInput is one rubric rating in a submission payload.
type ResponseInput struct {
	CriterionID string `json:"criterion_id"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
}

// SubmitEvaluationRequest is the structured submission payload shared by the
// student and self paths. Semester and academic year are only honored on the
// self path; the student path always substitutes the active period.
type SubmitEvaluationRequest struct {
	FacultyID    string          `json:"faculty_id"`
	SubjectID    string          `json:"subject_id"`
	Semester     string          `json:"semester"`
	AcademicYear string          `json:"academic_year"`
	Comments     string          `json:"comments"`
	Responses    []ResponseInput `json:"responses"`
}

// EvaluationService runs the submission pipeline. Each step is terminal on
// first failure and no partial rows are ever written.
type EvaluationService struct {
	repo      evaluationRepository
	faculty   facultyResolver
	students  studentResolver
	enrolled  enrollmentChecker
	gate      submissionGate
	criteria  activeCriteriaLister
	cache     reportCacheInvalidator
	metrics   submissionMetrics
	logger    *zap.Logger
}

// NewEvaluationService constructs an EvaluationService.
func NewEvaluationService(repo evaluationRepository, faculty facultyResolver, students studentResolver, enrolled enrollmentChecker, gate submissionGate, criteria activeCriteriaLister, cache reportCacheInvalidator, metrics submissionMetrics, logger *zap.Logger) *EvaluationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationService{
		repo:     repo,
		faculty:  faculty,
		students: students,
		enrolled: enrolled,
		gate:     gate,
		criteria: criteria,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
	}
}

// SubmitStudent runs the student submission pipeline: period gate, field
// validation, faculty existence, enrollment authorization, duplicate check,
// then the transactional write. Anonymity is forced on and the semester and
// academic year always come from the server-resolved active period, never
// from the client.
func (s *EvaluationService) SubmitStudent(ctx context.Context, claims *models.JWTClaims, req SubmitEvaluationRequest) (*models.Evaluation, error) {
	gate, err := s.gate.Gate(ctx)
	if err != nil {
		s.record("student", "rejected")
		return nil, err
	}
	if !gate.Open {
		s.record("student", "rejected")
		if gate.Reason != "" {
			return nil, appErrors.Clone(appErrors.ErrPeriodClosed, gate.Reason)
		}
		return nil, appErrors.ErrPeriodClosed
	}

	if req.FacultyID == "" || req.SubjectID == "" {
		s.record("student", "rejected")
		return nil, appErrors.Clone(appErrors.ErrValidation, "All required fields must be filled")
	}

	student, err := s.students.FindByUserID(ctx, claims.UserID)
	if err != nil {
		s.record("student", "rejected")
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}

	faculty, err := s.faculty.FindByID(ctx, req.FacultyID)
	if err != nil {
		s.record("student", "rejected")
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "Invalid faculty selection")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}

	authorized, err := s.enrolled.Exists(ctx, student.ID, faculty.ID, req.SubjectID)
	if err != nil {
		s.record("student", "rejected")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !authorized {
		s.record("student", "rejected")
		return nil, appErrors.Clone(appErrors.ErrForbidden, "You can only evaluate faculty for your enrolled subjects.")
	}

	semester := gate.Schedule.Semester
	academicYear := gate.Schedule.AcademicYear

	duplicate, err := s.repo.ExistsStudentSubmission(ctx, student.ID, faculty.ID, req.SubjectID, semester, academicYear)
	if err != nil {
		s.record("student", "rejected")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check for duplicates")
	}
	if duplicate {
		s.record("student", "duplicate")
		return nil, appErrors.ErrDuplicateEvaluation
	}

	responses, err := s.buildResponses(ctx, req.Responses)
	if err != nil {
		s.record("student", "rejected")
		return nil, err
	}

	role := string(models.RoleStudent)
	evaluation := &models.Evaluation{
		FacultyID:       faculty.ID,
		StudentID:       &student.ID,
		SubjectID:       req.SubjectID,
		Semester:        semester,
		AcademicYear:    academicYear,
		Comments:        req.Comments,
		IsAnonymous:     true,
		EvaluatorUserID: &claims.UserID,
		EvaluatorRole:   &role,
		IsSelf:          false,
	}

	if err := s.repo.CreateWithResponses(ctx, evaluation, responses); err != nil {
		if errors.Is(err, repository.ErrDuplicateSubmission) {
			s.record("student", "duplicate")
			return nil, appErrors.ErrDuplicateEvaluation
		}
		s.record("student", "rejected")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store evaluation")
	}

	s.record("student", "accepted")
	s.invalidateReports(ctx, faculty)
	return evaluation, nil
}

// SubmitSelf runs the faculty self-evaluation pipeline. The target faculty
// is always the caller's own profile; self-evaluations are never anonymous
// and do not consult the period gate, so semester and academic year come
// from the payload.
func (s *EvaluationService) SubmitSelf(ctx context.Context, claims *models.JWTClaims, req SubmitEvaluationRequest) (*models.Evaluation, error) {
	if req.SubjectID == "" || req.Semester == "" || req.AcademicYear == "" {
		s.record("self", "rejected")
		return nil, appErrors.Clone(appErrors.ErrValidation, "All required fields must be filled")
	}

	faculty, err := s.faculty.FindByUserID(ctx, claims.UserID)
	if err != nil {
		s.record("self", "rejected")
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "Invalid faculty selection for self-evaluation")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty profile")
	}
	if req.FacultyID != "" && req.FacultyID != faculty.ID {
		s.record("self", "rejected")
		return nil, appErrors.Clone(appErrors.ErrValidation, "Invalid faculty selection for self-evaluation")
	}

	duplicate, err := s.repo.ExistsSelfSubmission(ctx, faculty.ID, req.SubjectID, req.Semester, req.AcademicYear)
	if err != nil {
		s.record("self", "rejected")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check for duplicates")
	}
	if duplicate {
		s.record("self", "duplicate")
		return nil, appErrors.Clone(appErrors.ErrDuplicateEvaluation, "You have already submitted a self-evaluation for this subject and semester.")
	}

	responses, err := s.buildResponses(ctx, req.Responses)
	if err != nil {
		s.record("self", "rejected")
		return nil, err
	}

	role := string(models.RoleFaculty)
	evaluation := &models.Evaluation{
		FacultyID:       faculty.ID,
		SubjectID:       req.SubjectID,
		Semester:        req.Semester,
		AcademicYear:    req.AcademicYear,
		Comments:        req.Comments,
		IsAnonymous:     false,
		EvaluatorUserID: &claims.UserID,
		EvaluatorRole:   &role,
		IsSelf:          true,
	}

	if err := s.repo.CreateWithResponses(ctx, evaluation, responses); err != nil {
		if errors.Is(err, repository.ErrDuplicateSubmission) {
			s.record("self", "duplicate")
			return nil, appErrors.Clone(appErrors.ErrDuplicateEvaluation, "You have already submitted a self-evaluation for this subject and semester.")
		}
		s.record("self", "rejected")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store evaluation")
	}

	s.record("self", "accepted")
	s.invalidateReports(ctx, faculty)
	return evaluation, nil
}

// buildResponses keeps the submitted ratings that reference an active
// criterion and fall inside [1,5]. Everything else is silently skipped so a
// stale form never fails the whole submission.
func (s *EvaluationService) buildResponses(ctx context.Context, inputs []ResponseInput) ([]models.EvaluationResponse, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	criteria, err := s.criteria.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load criteria")
	}
	active := make(map[string]struct{}, len(criteria))
	for _, c := range criteria {
		active[c.ID] = struct{}{}
	}

	responses := make([]models.EvaluationResponse, 0, len(inputs))
	for _, in := range inputs {
		if in.Rating < 1 || in.Rating > 5 {
			continue
		}
		if _, ok := active[in.CriterionID]; !ok {
			continue
		}
		responses = append(responses, models.EvaluationResponse{
			CriterionID: in.CriterionID,
			Rating:      in.Rating,
			Comment:     in.Comment,
		})
	}
	return responses, nil
}

func (s *EvaluationService) record(kind, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSubmission(kind, outcome)
	}
}

// invalidateReports drops cached report payloads touched by a new
// submission. Failures degrade to a log line; the submission already
// committed.
func (s *EvaluationService) invalidateReports(ctx context.Context, faculty *models.FacultyDetail) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("reports:faculty:%s:*", faculty.ID)); err != nil {
		s.logger.Warn("failed to invalidate faculty report cache", zap.String("faculty_id", faculty.ID), zap.Error(err))
	}
	if faculty.DepartmentName != nil {
		if err := s.cache.Invalidate(ctx, fmt.Sprintf("reports:department:%s", *faculty.DepartmentName)); err != nil {
			s.logger.Warn("failed to invalidate department report cache", zap.Error(err))
		}
	}
}
