package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-eval-api/internal/models"
)

// ExportRepository persists report export metadata.
type ExportRepository struct {
	db *sqlx.DB
}

// NewExportRepository constructs the repository.
func NewExportRepository(db *sqlx.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

const exportColumns = `id, department, format, status, result_url, error_message, requested_by, requester_role, requester_department_id, created_at, completed_at`

// Create inserts a new export row with generated defaults.
func (r *ExportRepository) Create(ctx context.Context, export *models.ReportExport) error {
	if export.ID == "" {
		export.ID = uuid.NewString()
	}
	if export.Status == "" {
		export.Status = models.ExportStatusPending
	}
	if export.RequesterRole == "" {
		export.RequesterRole = string(models.RoleAdmin)
	}
	if export.CreatedAt.IsZero() {
		export.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO report_exports (id, department, format, status, result_url, error_message, requested_by, requester_role, requester_department_id, created_at, completed_at)
VALUES (:id, :department, :format, :status, :result_url, :error_message, :requested_by, :requester_role, :requester_department_id, :created_at, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, export); err != nil {
		return fmt.Errorf("create report export: %w", err)
	}
	return nil
}

// GetByID returns an export row by its identifier.
func (r *ExportRepository) GetByID(ctx context.Context, id string) (*models.ReportExport, error) {
	query := fmt.Sprintf(`SELECT %s FROM report_exports WHERE id = $1`, exportColumns)
	var export models.ReportExport
	if err := r.db.GetContext(ctx, &export, query, id); err != nil {
		return nil, err
	}
	return &export, nil
}

// UpdateExportParams defines the mutable fields of an export row.
type UpdateExportParams struct {
	Status       *models.ExportStatus
	ResultURL    *string
	ErrorMessage *string
	CompletedAt  *time.Time
}

// Update persists the provided changes for an export row.
func (r *ExportRepository) Update(ctx context.Context, id string, params UpdateExportParams) error {
	set := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	argPos := 1

	if params.Status != nil {
		set = append(set, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *params.Status)
		argPos++
	}
	if params.ResultURL != nil {
		set = append(set, fmt.Sprintf("result_url = $%d", argPos))
		args = append(args, *params.ResultURL)
		argPos++
	}
	if params.ErrorMessage != nil {
		set = append(set, fmt.Sprintf("error_message = $%d", argPos))
		args = append(args, *params.ErrorMessage)
		argPos++
	}
	if params.CompletedAt != nil {
		set = append(set, fmt.Sprintf("completed_at = $%d", argPos))
		args = append(args, *params.CompletedAt)
		argPos++
	}

	if len(set) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE report_exports SET %s WHERE id = $%d", strings.Join(set, ", "), argPos)
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update report export: %w", err)
	}
	return nil
}

// ListPending fetches pending exports for cold start recovery.
func (r *ExportRepository) ListPending(ctx context.Context, limit int) ([]models.ReportExport, error) {
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM report_exports WHERE status = 'PENDING' ORDER BY created_at ASC LIMIT $1`, exportColumns)
	var exports []models.ReportExport
	if err := r.db.SelectContext(ctx, &exports, query, limit); err != nil {
		return nil, fmt.Errorf("list pending report exports: %w", err)
	}
	return exports, nil
}
