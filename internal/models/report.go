package models

import "time"

// FacultySummary aggregates overall ratings for one faculty member.
// HasData distinguishes "no submitted evaluations" from an average of zero.
type FacultySummary struct {
	FacultyID     string   `db:"faculty_id" json:"faculty_id"`
	FacultyName   string   `db:"faculty_name" json:"faculty_name"`
	Count         int      `db:"evaluation_count" json:"evaluation_count"`
	AverageRating *float64 `db:"average_rating" json:"average_rating,omitempty"`
	MinRating     *float64 `db:"min_rating" json:"min_rating,omitempty"`
	MaxRating     *float64 `db:"max_rating" json:"max_rating,omitempty"`
	HasData       bool     `json:"has_data"`
}

// CriterionSummary aggregates response ratings per rubric item.
type CriterionSummary struct {
	Category      string   `db:"category" json:"category"`
	Criterion     string   `db:"criterion" json:"criterion"`
	AverageRating *float64 `db:"average_rating" json:"average_rating,omitempty"`
	ResponseCount int      `db:"response_count" json:"response_count"`
	HasData       bool     `json:"has_data"`
}

// PeriodSummary aggregates overall ratings per (semester, academic_year).
type PeriodSummary struct {
	Semester      string   `db:"semester" json:"semester"`
	AcademicYear  string   `db:"academic_year" json:"academic_year"`
	AverageRating *float64 `db:"average_rating" json:"average_rating,omitempty"`
	Count         int      `db:"evaluation_count" json:"evaluation_count"`
	HasData       bool     `json:"has_data"`
}

// DistributionEntry is a label/count pair for rollup charts.
type DistributionEntry struct {
	Label string `db:"label" json:"label"`
	Count int    `db:"count" json:"count"`
}

// TrendPoint is one month of the enrollment trend.
type TrendPoint struct {
	Month string `db:"month" json:"month"`
	Count int    `db:"count" json:"count"`
}

// DepartmentReport is the dean/admin rollup for one department.
type DepartmentReport struct {
	Department       string              `json:"department"`
	StudentCount     int                 `json:"student_count"`
	FacultyCount     int                 `json:"faculty_count"`
	NewSignups30d    int                 `json:"new_signups_30d"`
	TotalEvaluations int                 `json:"total_evaluations"`
	Programs         []DistributionEntry `json:"programs"`
	YearLevels       []DistributionEntry `json:"year_levels"`
	EnrollmentTrend  []TrendPoint        `json:"enrollment_trend"`
	FacultySummaries []FacultySummary    `json:"faculty_summaries"`
	GeneratedAt      time.Time           `json:"generated_at"`
}

// ExportStatus is the lifecycle of an asynchronous report export.
type ExportStatus string

const (
	ExportStatusPending   ExportStatus = "PENDING"
	ExportStatusCompleted ExportStatus = "COMPLETED"
	ExportStatusFailed    ExportStatus = "FAILED"
)

// ReportExport tracks one queued department report export.
type ReportExport struct {
	ID           string       `db:"id" json:"id"`
	Department   string       `db:"department" json:"department"`
	Format       string       `db:"format" json:"format"`
	Status       ExportStatus `db:"status" json:"status"`
	ResultURL    *string      `db:"result_url" json:"result_url,omitempty"`
	ErrorMessage *string      `db:"error_message" json:"error,omitempty"`
	RequestedBy  string       `db:"requested_by" json:"requested_by"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	CompletedAt  *time.Time   `db:"completed_at" json:"completed_at,omitempty"`

	// Requester scope is persisted so a replayed job runs with the same
	// authorization the original request carried.
	RequesterRole         string `db:"requester_role" json:"-"`
	RequesterDepartmentID string `db:"requester_department_id" json:"-"`
}
