package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/faculty-eval-api/internal/models"
	"github.com/noah-isme/faculty-eval-api/internal/repository"
	appErrors "github.com/noah-isme/faculty-eval-api/pkg/errors"
	"github.com/noah-isme/faculty-eval-api/pkg/export"
	"github.com/noah-isme/faculty-eval-api/pkg/jobs"
	"github.com/noah-isme/faculty-eval-api/pkg/storage"
)

type exportStore interface {
	Create(ctx context.Context, export *models.ReportExport) error
	GetByID(ctx context.Context, id string) (*models.ReportExport, error)
	Update(ctx context.Context, id string, params repository.UpdateExportParams) error
	ListPending(ctx context.Context, limit int) ([]models.ReportExport, error)
}

type departmentReporter interface {
	DepartmentReport(ctx context.Context, claims *models.JWTClaims, requested string) (*models.DepartmentReport, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix  string
	MaxRetries int
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File     *os.File
	Filename string
	Format   string
}

// ExportService renders department reports to files asynchronously. Requests
// persist an export row and enqueue a job; workers call Handle, which builds
// the dataset, renders it and stores the artifact behind a signed URL.
type ExportService struct {
	store   exportStore
	reports departmentReporter
	queue   jobDispatcher
	storage fileStorage
	signer  *storage.SignedURLSigner
	csv     csvRenderer
	pdf     pdfRenderer
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(store exportStore, reports departmentReporter, queue jobDispatcher, files fileStorage, signer *storage.SignedURLSigner, metrics *MetricsService, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &ExportService{
		store:   store,
		reports: reports,
		queue:   queue,
		storage: files,
		signer:  signer,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

// Request persists an export row and enqueues rendering. Department scoping
// follows the same rules as the live report.
func (s *ExportService) Request(ctx context.Context, claims *models.JWTClaims, department, format string) (*models.ReportExport, error) {
	format = strings.ToLower(format)
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}

	row := &models.ReportExport{
		Department:            department,
		Format:                format,
		Status:                models.ExportStatusPending,
		RequestedBy:           claims.UserID,
		RequesterRole:         string(claims.Role),
		RequesterDepartmentID: claims.DepartmentID,
	}
	if err := s.store.Create(ctx, row); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: row.ID, Type: "department-report", Payload: claims}); err != nil {
		status := models.ExportStatusFailed
		msg := "failed to enqueue export"
		now := time.Now().UTC()
		_ = s.store.Update(ctx, row.ID, repository.UpdateExportParams{
			Status:       &status,
			ErrorMessage: &msg,
			CompletedAt:  &now,
		})
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return row, nil
}

// Status returns export metadata, enforcing ownership for non-admin callers.
func (s *ExportService) Status(ctx context.Context, claims *models.JWTClaims, id string) (*models.ReportExport, error) {
	row, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export")
	}
	if claims.Role != models.RoleAdmin && row.RequestedBy != claims.UserID {
		return nil, appErrors.ErrForbidden
	}
	return row, nil
}

// Handle is the queue worker entry point. The payload carries the claims of
// the requesting user; jobs recovered after a restart rebuild them from the
// persisted requester scope so a replay never widens authorization.
func (s *ExportService) Handle(ctx context.Context, job jobs.Job) error {
	row, err := s.store.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	claims, _ := job.Payload.(*models.JWTClaims)
	if claims == nil {
		claims = &models.JWTClaims{
			UserID:       row.RequestedBy,
			Role:         models.UserRole(row.RequesterRole),
			DepartmentID: row.RequesterDepartmentID,
		}
	}

	start := time.Now()
	report, err := s.reports.DepartmentReport(ctx, claims, row.Department)
	if err != nil {
		return s.fail(ctx, job, err)
	}

	dataset, title := buildDepartmentDataset(report)
	var payload []byte
	switch row.Format {
	case "csv":
		payload, err = s.csv.Render(dataset)
	case "pdf":
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", row.Format)
	}
	if err != nil {
		return s.fail(ctx, job, err)
	}

	filename := fmt.Sprintf("department_report_%s_%s.%s",
		sanitizeFilename(report.Department), time.Now().UTC().Format("20060102_150405"), row.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return s.fail(ctx, job, err)
	}

	token, _, err := s.signer.Generate(row.ID, relPath)
	if err != nil {
		return s.fail(ctx, job, err)
	}
	resultURL := fmt.Sprintf("%s/exports/download/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token)

	completed := models.ExportStatusCompleted
	now := time.Now().UTC()
	clear := ""
	if err := s.store.Update(ctx, job.ID, repository.UpdateExportParams{
		Status:       &completed,
		ResultURL:    &resultURL,
		ErrorMessage: &clear,
		CompletedAt:  &now,
	}); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.ObserveExport(time.Since(start))
	}
	return nil
}

// ResolveDownload validates the signed token and opens the stored file.
func (s *ExportService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	exportID, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	row, err := s.store.GetByID(ctx, exportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export")
	}
	if row.Status != models.ExportStatusCompleted {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ExportDownload{
		File:     file,
		Filename: filepath.Base(relPath),
		Format:   row.Format,
	}, nil
}

// RecoverPending requeues exports interrupted by a restart.
func (s *ExportService) RecoverPending(ctx context.Context) {
	pending, err := s.store.ListPending(ctx, 50)
	if err != nil {
		s.logger.Warn("failed to recover pending exports", zap.Error(err))
		return
	}
	for _, row := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: row.ID, Type: "department-report"}); err != nil {
			s.logger.Warn("failed to requeue export", zap.String("export_id", row.ID), zap.Error(err))
		}
	}
}

func (s *ExportService) fail(ctx context.Context, job jobs.Job, cause error) error {
	if job.Attempt < s.cfg.MaxRetries {
		return cause
	}
	failed := models.ExportStatusFailed
	msg := cause.Error()
	now := time.Now().UTC()
	if err := s.store.Update(ctx, job.ID, repository.UpdateExportParams{
		Status:       &failed,
		ErrorMessage: &msg,
		CompletedAt:  &now,
	}); err != nil {
		s.logger.Warn("failed to mark export failed", zap.String("export_id", job.ID), zap.Error(err))
	}
	return cause
}

func buildDepartmentDataset(report *models.DepartmentReport) (export.Dataset, string) {
	rows := make([]map[string]string, 0, len(report.FacultySummaries))
	for _, summary := range report.FacultySummaries {
		avg := ""
		if summary.AverageRating != nil {
			avg = fmt.Sprintf("%.2f", *summary.AverageRating)
		}
		rows = append(rows, map[string]string{
			"Faculty":     summary.FacultyName,
			"Evaluations": fmt.Sprintf("%d", summary.Count),
			"Average":     avg,
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Faculty", "Evaluations", "Average"},
		Rows:    rows,
	}
	title := fmt.Sprintf("Department Report %s", report.Department)
	return dataset, title
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
