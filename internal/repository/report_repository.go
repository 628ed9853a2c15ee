package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/faculty-eval-api/internal/models"
)

// ReportRepository exposes read-only aggregation queries over submitted
// evaluations. Nothing here mutates state.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// FacultySummary aggregates overall ratings for one faculty member.
func (r *ReportRepository) FacultySummary(ctx context.Context, facultyID string) (*models.FacultySummary, error) {
	const query = `SELECT f.id AS faculty_id, u.full_name AS faculty_name,
        COUNT(e.id) AS evaluation_count,
        ROUND(AVG(e.overall_rating), 2) AS average_rating,
        MIN(e.overall_rating) AS min_rating,
        MAX(e.overall_rating) AS max_rating
        FROM faculty f
        JOIN users u ON u.id = f.user_id
        LEFT JOIN evaluations e ON e.faculty_id = f.id AND e.status = 'SUBMITTED'
        WHERE f.id = $1
        GROUP BY f.id, u.full_name`
	var summary models.FacultySummary
	if err := r.db.GetContext(ctx, &summary, query, facultyID); err != nil {
		return nil, err
	}
	summary.HasData = summary.Count > 0 && summary.AverageRating != nil
	return &summary, nil
}

// CriterionSummaries aggregates response ratings per rubric item for a
// faculty's submitted evaluations. Every active criterion appears in the
// result, with a zero response count when this faculty has none.
func (r *ReportRepository) CriterionSummaries(ctx context.Context, facultyID string) ([]models.CriterionSummary, error) {
	const query = `SELECT c.category, c.criterion,
        ROUND(AVG(fr.rating), 2) AS average_rating,
        COUNT(fr.id) AS response_count
        FROM evaluation_criteria c
        LEFT JOIN (
            SELECT er.id, er.criterion_id, er.rating
            FROM evaluation_responses er
            JOIN evaluations e ON e.id = er.evaluation_id
            WHERE e.faculty_id = $1 AND e.status = 'SUBMITTED'
        ) fr ON fr.criterion_id = c.id
        WHERE c.active
        GROUP BY c.category, c.criterion, c.sort_order
        ORDER BY c.sort_order`
	var summaries []models.CriterionSummary
	if err := r.db.SelectContext(ctx, &summaries, query, facultyID); err != nil {
		return nil, fmt.Errorf("criterion summaries: %w", err)
	}
	for i := range summaries {
		summaries[i].HasData = summaries[i].ResponseCount > 0
	}
	return summaries, nil
}

// PeriodSummaries aggregates overall ratings per (semester, academic_year)
// for one faculty member.
func (r *ReportRepository) PeriodSummaries(ctx context.Context, facultyID string) ([]models.PeriodSummary, error) {
	const query = `SELECT e.semester, e.academic_year,
        ROUND(AVG(e.overall_rating), 2) AS average_rating,
        COUNT(e.id) AS evaluation_count
        FROM evaluations e
        WHERE e.faculty_id = $1 AND e.status = 'SUBMITTED'
        GROUP BY e.semester, e.academic_year
        ORDER BY e.academic_year DESC, e.semester DESC`
	var summaries []models.PeriodSummary
	if err := r.db.SelectContext(ctx, &summaries, query, facultyID); err != nil {
		return nil, fmt.Errorf("period summaries: %w", err)
	}
	for i := range summaries {
		summaries[i].HasData = summaries[i].Count > 0
	}
	return summaries, nil
}

// DepartmentCounts returns the headline numbers of the department rollup.
func (r *ReportRepository) DepartmentCounts(ctx context.Context, departmentName string) (students, faculty, newSignups, evaluations int, err error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM students s JOIN users u ON u.id = s.user_id JOIN departments d ON d.id = u.department_id WHERE d.name = $1) AS student_count,
        (SELECT COUNT(*) FROM faculty f JOIN users u ON u.id = f.user_id JOIN departments d ON d.id = u.department_id WHERE d.name = $1) AS faculty_count,
        (SELECT COUNT(*) FROM users u JOIN departments d ON d.id = u.department_id WHERE d.name = $1 AND u.created_at >= NOW() - INTERVAL '30 days') AS new_signups,
        (SELECT COUNT(*) FROM evaluations e JOIN faculty f ON f.id = e.faculty_id JOIN users u ON u.id = f.user_id JOIN departments d ON d.id = u.department_id WHERE d.name = $1 AND e.status = 'SUBMITTED') AS evaluation_count`
	row := struct {
		StudentCount    int `db:"student_count"`
		FacultyCount    int `db:"faculty_count"`
		NewSignups      int `db:"new_signups"`
		EvaluationCount int `db:"evaluation_count"`
	}{}
	if err := r.db.GetContext(ctx, &row, query, departmentName); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("department counts: %w", err)
	}
	return row.StudentCount, row.FacultyCount, row.NewSignups, row.EvaluationCount, nil
}

// ProgramDistribution counts students per program within a department.
func (r *ReportRepository) ProgramDistribution(ctx context.Context, departmentName string) ([]models.DistributionEntry, error) {
	const query = `SELECT s.program AS label, COUNT(*) AS count
        FROM students s
        JOIN users u ON u.id = s.user_id
        JOIN departments d ON d.id = u.department_id
        WHERE d.name = $1
        GROUP BY s.program
        ORDER BY count DESC`
	var entries []models.DistributionEntry
	if err := r.db.SelectContext(ctx, &entries, query, departmentName); err != nil {
		return nil, fmt.Errorf("program distribution: %w", err)
	}
	return entries, nil
}

// YearLevelDistribution counts students per year level within a department.
func (r *ReportRepository) YearLevelDistribution(ctx context.Context, departmentName string) ([]models.DistributionEntry, error) {
	const query = `SELECT CAST(s.year_level AS TEXT) AS label, COUNT(*) AS count
        FROM students s
        JOIN users u ON u.id = s.user_id
        JOIN departments d ON d.id = u.department_id
        WHERE d.name = $1
        GROUP BY s.year_level
        ORDER BY s.year_level`
	var entries []models.DistributionEntry
	if err := r.db.SelectContext(ctx, &entries, query, departmentName); err != nil {
		return nil, fmt.Errorf("year level distribution: %w", err)
	}
	return entries, nil
}

// EnrollmentTrend returns enrollment counts per month for the last 6 months.
func (r *ReportRepository) EnrollmentTrend(ctx context.Context, departmentName string) ([]models.TrendPoint, error) {
	const query = `SELECT TO_CHAR(DATE_TRUNC('month', e.created_at), 'YYYY-MM') AS month, COUNT(*) AS count
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN users u ON u.id = s.user_id
        JOIN departments d ON d.id = u.department_id
        WHERE d.name = $1 AND e.created_at >= DATE_TRUNC('month', NOW()) - INTERVAL '5 months'
        GROUP BY DATE_TRUNC('month', e.created_at)
        ORDER BY month`
	var points []models.TrendPoint
	if err := r.db.SelectContext(ctx, &points, query, departmentName); err != nil {
		return nil, fmt.Errorf("enrollment trend: %w", err)
	}
	return points, nil
}

// DepartmentFacultySummaries returns per-faculty rating aggregates for every
// faculty member in a department.
func (r *ReportRepository) DepartmentFacultySummaries(ctx context.Context, departmentName string) ([]models.FacultySummary, error) {
	const query = `SELECT f.id AS faculty_id, u.full_name AS faculty_name,
        COUNT(e.id) AS evaluation_count,
        ROUND(AVG(e.overall_rating), 2) AS average_rating,
        MIN(e.overall_rating) AS min_rating,
        MAX(e.overall_rating) AS max_rating
        FROM faculty f
        JOIN users u ON u.id = f.user_id
        JOIN departments d ON d.id = u.department_id
        LEFT JOIN evaluations e ON e.faculty_id = f.id AND e.status = 'SUBMITTED'
        WHERE d.name = $1
        GROUP BY f.id, u.full_name
        ORDER BY u.full_name`
	var summaries []models.FacultySummary
	if err := r.db.SelectContext(ctx, &summaries, query, departmentName); err != nil {
		return nil, fmt.Errorf("department faculty summaries: %w", err)
	}
	for i := range summaries {
		summaries[i].HasData = summaries[i].Count > 0 && summaries[i].AverageRating != nil
	}
	return summaries, nil
}
