package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-eval-api/internal/models"
	appErrors "github.com/noah-isme/faculty-eval-api/pkg/errors"
)

type enrollmentRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	Exists(ctx context.Context, studentID, facultyID, subjectID string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	AssignSubject(ctx context.Context, assignment *models.FacultySubject) error
	SubjectAssigned(ctx context.Context, facultyID, subjectID string) (bool, error)
	ListSubjectsByFaculty(ctx context.Context, facultyID string) ([]models.Subject, error)
}

type studentResolver interface {
	FindByUserID(ctx context.Context, userID string) (*models.StudentDetail, error)
}

// CreateEnrollmentRequest is the admin payload for registering an
// authorization edge.
type CreateEnrollmentRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	FacultyID string `json:"faculty_id" validate:"required"`
	SubjectID string `json:"subject_id" validate:"required"`
}

// AssignSubjectRequest links a subject to a faculty member.
type AssignSubjectRequest struct {
	FacultyID string `json:"faculty_id" validate:"required"`
	SubjectID string `json:"subject_id" validate:"required"`
}

// EnrollmentService maintains the enrollment registry and answers the
// authorization question for student submissions.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  studentResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, students studentResolver, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EnrollmentService{repo: repo, students: students, validator: validate, logger: logger}
}

// IsAuthorized reports whether the student holds an enrollment edge for the
// (faculty, subject) pair.
func (s *EnrollmentService) IsAuthorized(ctx context.Context, studentID, facultyID, subjectID string) (bool, error) {
	ok, err := s.repo.Exists(ctx, studentID, facultyID, subjectID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	return ok, nil
}

// ListForUser returns the calling student's own enrollment set.
func (s *EnrollmentService) ListForUser(ctx context.Context, userID string) ([]models.EnrollmentDetail, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}
	list, err := s.repo.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return list, nil
}

// Enroll registers a new enrollment edge. The unique constraint makes the
// operation idempotent.
func (s *EnrollmentService) Enroll(ctx context.Context, req CreateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	enrollment := &models.Enrollment{
		StudentID: req.StudentID,
		FacultyID: req.FacultyID,
		SubjectID: req.SubjectID,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	return enrollment, nil
}

// AssignSubject records that a faculty member teaches a subject.
func (s *EnrollmentService) AssignSubject(ctx context.Context, req AssignSubjectRequest) (*models.FacultySubject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	assignment := &models.FacultySubject{
		FacultyID: req.FacultyID,
		SubjectID: req.SubjectID,
	}
	if err := s.repo.AssignSubject(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign subject")
	}
	return assignment, nil
}

// SubjectsForFaculty returns the subjects a faculty member teaches.
func (s *EnrollmentService) SubjectsForFaculty(ctx context.Context, facultyID string) ([]models.Subject, error) {
	subjects, err := s.repo.ListSubjectsByFaculty(ctx, facultyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculty subjects")
	}
	return subjects, nil
}
