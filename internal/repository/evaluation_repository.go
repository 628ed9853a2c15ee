package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/faculty-eval-api/internal/models"
)

// ErrDuplicateSubmission is returned when the partial unique indexes reject
// a second submission for the same evaluator/faculty/subject/period tuple.
var ErrDuplicateSubmission = errors.New("duplicate evaluation submission")

// EvaluationRepository persists evaluations with their responses.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository constructs the repository.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// ExistsStudentSubmission reports whether the student already evaluated this
// (faculty, subject) pair in the given period.
func (r *EvaluationRepository) ExistsStudentSubmission(ctx context.Context, studentID, facultyID, subjectID, semester, academicYear string) (bool, error) {
	const query = `SELECT 1 FROM evaluations
        WHERE student_id = $1 AND faculty_id = $2 AND subject_id = $3 AND semester = $4 AND academic_year = $5
        LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, facultyID, subjectID, semester, academicYear); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student submission: %w", err)
	}
	return true, nil
}

// ExistsSelfSubmission reports whether the faculty member already submitted
// a self-evaluation for this subject and period.
func (r *EvaluationRepository) ExistsSelfSubmission(ctx context.Context, facultyID, subjectID, semester, academicYear string) (bool, error) {
	const query = `SELECT 1 FROM evaluations
        WHERE faculty_id = $1 AND subject_id = $2 AND semester = $3 AND academic_year = $4 AND is_self
        LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, facultyID, subjectID, semester, academicYear); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check self submission: %w", err)
	}
	return true, nil
}

// CreateWithResponses inserts the evaluation and its responses in one
// transaction and derives overall_rating from the stored ratings. A reader
// can never observe the evaluation without its responses or with a stale
// aggregate; any error rolls back the entire submission.
func (r *EvaluationRepository) CreateWithResponses(ctx context.Context, evaluation *models.Evaluation, responses []models.EvaluationResponse) error {
	if evaluation.ID == "" {
		evaluation.ID = uuid.NewString()
	}
	if evaluation.SubmittedAt.IsZero() {
		evaluation.SubmittedAt = time.Now().UTC()
	}
	if evaluation.Status == "" {
		evaluation.Status = models.EvaluationStatusSubmitted
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	const insertEvaluation = `INSERT INTO evaluations (id, faculty_id, student_id, subject_id, semester, academic_year,
        comments, is_anonymous, evaluator_user_id, evaluator_role, is_self, status, overall_rating, submitted_at)
        VALUES (:id, :faculty_id, :student_id, :subject_id, :semester, :academic_year,
        :comments, :is_anonymous, :evaluator_user_id, :evaluator_role, :is_self, :status, :overall_rating, :submitted_at)`
	if _, err := tx.NamedExecContext(ctx, insertEvaluation, evaluation); err != nil {
		tx.Rollback() //nolint:errcheck
		if isUniqueViolation(err) {
			return ErrDuplicateSubmission
		}
		return fmt.Errorf("insert evaluation: %w", err)
	}

	sum := 0
	count := 0
	for i := range responses {
		responses[i].EvaluationID = evaluation.ID
		if responses[i].ID == "" {
			responses[i].ID = uuid.NewString()
		}
		const insertResponse = `INSERT INTO evaluation_responses (id, evaluation_id, criterion_id, rating, comment)
                VALUES (:id, :evaluation_id, :criterion_id, :rating, :comment)`
		if _, err := tx.NamedExecContext(ctx, insertResponse, responses[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert response: %w", err)
		}
		sum += responses[i].Rating
		count++
	}

	if count > 0 {
		overall := math.Round(float64(sum)/float64(count)*100) / 100
		evaluation.OverallRating = &overall
		if _, err := tx.ExecContext(ctx, `UPDATE evaluations SET overall_rating = $2 WHERE id = $1`, evaluation.ID, overall); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("update overall rating: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSubmission
		}
		return fmt.Errorf("commit evaluation: %w", err)
	}
	return nil
}

// CountByFaculty returns the number of submitted evaluations for a faculty.
func (r *EvaluationRepository) CountByFaculty(ctx context.Context, facultyID string) (int, error) {
	var count int
	const query = `SELECT COUNT(*) FROM evaluations WHERE faculty_id = $1 AND status = $2`
	if err := r.db.GetContext(ctx, &count, query, facultyID, models.EvaluationStatusSubmitted); err != nil {
		return 0, fmt.Errorf("count evaluations: %w", err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
