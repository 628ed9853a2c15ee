package models

import "time"

// EvaluationPeriod designates a (semester, academic_year) window for student
// evaluation submission. At most one period is active at any time; a partial
// unique index enforces this at the schema level.
type EvaluationPeriod struct {
	ID           string     `db:"id" json:"id"`
	Semester     string     `db:"semester" json:"semester"`
	AcademicYear string     `db:"academic_year" json:"academic_year"`
	StartsAt     *time.Time `db:"starts_at" json:"starts_at,omitempty"`
	EndsAt       *time.Time `db:"ends_at" json:"ends_at,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// PeriodState describes the gate outcome.
type PeriodState string

const (
	PeriodStateOpen   PeriodState = "OPEN"
	PeriodStateClosed PeriodState = "CLOSED"
)

// PeriodGate is the result of checking whether submission is allowed.
type PeriodGate struct {
	Open     bool              `json:"open"`
	State    PeriodState       `json:"state"`
	Reason   string            `json:"reason,omitempty"`
	Schedule *EvaluationPeriod `json:"schedule,omitempty"`
}
