package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-eval-api/internal/models"
)

// StudentRepository handles persistence for student profiles.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentDetailQuery = `SELECT s.id, s.user_id, s.student_no, s.program, s.year_level, s.created_at, s.updated_at,
        u.full_name, u.email, u.department_id
        FROM students s
        JOIN users u ON u.id = s.user_id`

// FindByID loads a student profile with user context.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, studentDetailQuery+` WHERE s.id = $1`, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindByUserID resolves the student profile behind a user identity.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.StudentDetail, error) {
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, studentDetailQuery+` WHERE s.user_id = $1`, userID); err != nil {
		return nil, err
	}
	return &detail, nil
}
