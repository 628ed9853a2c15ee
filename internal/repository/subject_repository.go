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

// SubjectRepository handles persistence for the subject catalog.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// FindDepartmentByName resolves a department by its canonical name.
func (r *SubjectRepository) FindDepartmentByName(ctx context.Context, name string) (*models.Department, error) {
	const query = `SELECT id, name, acronym, created_at FROM departments WHERE name = $1 OR acronym = $1`
	var dept models.Department
	if err := r.db.GetContext(ctx, &dept, query, name); err != nil {
		return nil, err
	}
	return &dept, nil
}

// FindDepartmentByID loads a department by identifier.
func (r *SubjectRepository) FindDepartmentByID(ctx context.Context, id string) (*models.Department, error) {
	const query = `SELECT id, name, acronym, created_at FROM departments WHERE id = $1`
	var dept models.Department
	if err := r.db.GetContext(ctx, &dept, query, id); err != nil {
		return nil, err
	}
	return &dept, nil
}

// ListByDepartment returns the subject catalog for a department.
func (r *SubjectRepository) ListByDepartment(ctx context.Context, departmentID string) ([]models.Subject, error) {
	const query = `SELECT id, department_id, code, name, created_at FROM subjects WHERE department_id = $1 ORDER BY name`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, departmentID); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// CountByDepartment reports catalog size, used to decide default seeding.
func (r *SubjectRepository) CountByDepartment(ctx context.Context, departmentID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM subjects WHERE department_id = $1`, departmentID); err != nil {
		return 0, fmt.Errorf("count subjects: %w", err)
	}
	return count, nil
}

// FindByID loads a subject.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, department_id, code, name, created_at FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// BulkCreate inserts a batch of subjects in one transaction, skipping rows
// that already exist on (department, code).
func (r *SubjectRepository) BulkCreate(ctx context.Context, subjects []models.Subject) error {
	if len(subjects) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	for i := range subjects {
		if subjects[i].ID == "" {
			subjects[i].ID = uuid.NewString()
		}
		if subjects[i].CreatedAt.IsZero() {
			subjects[i].CreatedAt = time.Now().UTC()
		}
		const query = `INSERT INTO subjects (id, department_id, code, name, created_at)
                VALUES (:id, :department_id, :code, :name, :created_at)
                ON CONFLICT (department_id, code) WHERE code IS NOT NULL DO NOTHING`
		if _, err := tx.NamedExecContext(ctx, query, subjects[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("bulk create subject: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit subjects: %w", err)
	}
	return nil
}

// ExistsByName checks whether a subject name exists within a department.
func (r *SubjectRepository) ExistsByName(ctx context.Context, departmentID, name string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM subjects WHERE department_id = $1 AND name = $2 LIMIT 1`, departmentID, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject name: %w", err)
	}
	return true, nil
}
