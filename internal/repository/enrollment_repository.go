package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-eval-api/internal/models"
)

// EnrollmentRepository handles the student↔(faculty, subject) registry and
// the faculty↔subject assignment table.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListByStudent returns the student's enrollment set with display context.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	const query = `SELECT e.id, e.student_id, e.faculty_id, e.subject_id, e.created_at,
        u.full_name AS faculty_name, s.name AS subject_name, s.code AS subject_code
        FROM enrollments e
        JOIN faculty f ON f.id = e.faculty_id
        JOIN users u ON u.id = f.user_id
        JOIN subjects s ON s.id = e.subject_id
        WHERE e.student_id = $1
        ORDER BY s.name`
	var list []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &list, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return list, nil
}

// Exists reports whether the (student, faculty, subject) edge is present.
// This is the authorization check for student submissions.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, facultyID, subjectID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE student_id = $1 AND faculty_id = $2 AND subject_id = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, facultyID, subjectID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// Create persists a new enrollment edge.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO enrollments (id, student_id, faculty_id, subject_id, created_at)
        VALUES (:id, :student_id, :faculty_id, :subject_id, :created_at)
        ON CONFLICT (student_id, faculty_id, subject_id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// AssignSubject links a subject to a faculty member.
func (r *EnrollmentRepository) AssignSubject(ctx context.Context, assignment *models.FacultySubject) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO faculty_subjects (id, faculty_id, subject_id, created_at)
        VALUES (:id, :faculty_id, :subject_id, :created_at)
        ON CONFLICT (faculty_id, subject_id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("assign subject: %w", err)
	}
	return nil
}

// SubjectAssigned reports whether the faculty member teaches the subject.
func (r *EnrollmentRepository) SubjectAssigned(ctx context.Context, facultyID, subjectID string) (bool, error) {
	const query = `SELECT 1 FROM faculty_subjects WHERE faculty_id = $1 AND subject_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, facultyID, subjectID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject assignment: %w", err)
	}
	return true, nil
}

// ListSubjectsByFaculty returns subjects assigned to a faculty member.
func (r *EnrollmentRepository) ListSubjectsByFaculty(ctx context.Context, facultyID string) ([]models.Subject, error) {
	const query = `SELECT s.id, s.department_id, s.code, s.name, s.created_at
        FROM faculty_subjects fs
        JOIN subjects s ON s.id = fs.subject_id
        WHERE fs.faculty_id = $1
        ORDER BY s.name`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, facultyID); err != nil {
		return nil, fmt.Errorf("list faculty subjects: %w", err)
	}
	return subjects, nil
}
