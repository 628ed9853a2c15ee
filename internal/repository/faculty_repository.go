package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-eval-api/internal/models"
)

// FacultyRepository handles persistence for faculty profiles.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository constructs the repository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

const facultyDetailColumns = `f.id, f.user_id, f.employee_no, f.position, f.hire_date, f.created_at, f.updated_at,
        u.full_name, u.email, u.department_id, d.name AS department_name`

// List returns faculty filtered by department name and search term.
func (r *FacultyRepository) List(ctx context.Context, filter models.FacultyFilter) ([]models.FacultyDetail, int, error) {
	base := `FROM faculty f
JOIN users u ON u.id = f.user_id
LEFT JOIN departments d ON d.id = u.department_id
WHERE u.active`
	var conditions []string
	var args []interface{}

	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("d.name = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(u.full_name ILIKE $%d OR f.employee_no ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " AND " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"full_name":   "u.full_name",
		"employee_no": "f.employee_no",
		"created_at":  "f.created_at",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "u.full_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d`, facultyDetailColumns, base+clause, orderBy, order, size, offset)

	var list []models.FacultyDetail
	if err := r.db.SelectContext(ctx, &list, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list faculty: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count faculty: %w", err)
	}
	return list, total, nil
}

// FindByID loads a faculty profile with user context.
func (r *FacultyRepository) FindByID(ctx context.Context, id string) (*models.FacultyDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM faculty f
        JOIN users u ON u.id = f.user_id
        LEFT JOIN departments d ON d.id = u.department_id
        WHERE f.id = $1`, facultyDetailColumns)
	var detail models.FacultyDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindByUserID resolves the faculty profile behind a user identity.
func (r *FacultyRepository) FindByUserID(ctx context.Context, userID string) (*models.FacultyDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM faculty f
        JOIN users u ON u.id = f.user_id
        LEFT JOIN departments d ON d.id = u.department_id
        WHERE f.user_id = $1`, facultyDetailColumns)
	var detail models.FacultyDetail
	if err := r.db.GetContext(ctx, &detail, query, userID); err != nil {
		return nil, err
	}
	return &detail, nil
}
