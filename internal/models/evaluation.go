package models

import "time"

// EvaluationStatus is the lifecycle state of an evaluation. Submission is the
// only flow producing rows, so SUBMITTED is the only status written here.
type EvaluationStatus string

const (
	EvaluationStatusSubmitted EvaluationStatus = "SUBMITTED"
)

// Evaluation is one rating submission against a faculty member. StudentID is
// nil for self-evaluations. OverallRating is derived from the stored
// responses and never settable independently.
type Evaluation struct {
	ID              string           `db:"id" json:"id"`
	FacultyID       string           `db:"faculty_id" json:"faculty_id"`
	StudentID       *string          `db:"student_id" json:"student_id,omitempty"`
	SubjectID       string           `db:"subject_id" json:"subject_id"`
	Semester        string           `db:"semester" json:"semester"`
	AcademicYear    string           `db:"academic_year" json:"academic_year"`
	Comments        string           `db:"comments" json:"comments"`
	IsAnonymous     bool             `db:"is_anonymous" json:"is_anonymous"`
	EvaluatorUserID *string          `db:"evaluator_user_id" json:"evaluator_user_id,omitempty"`
	EvaluatorRole   *string          `db:"evaluator_role" json:"evaluator_role,omitempty"`
	IsSelf          bool             `db:"is_self" json:"is_self"`
	Status          EvaluationStatus `db:"status" json:"status"`
	OverallRating   *float64         `db:"overall_rating" json:"overall_rating,omitempty"`
	SubmittedAt     time.Time        `db:"submitted_at" json:"submitted_at"`
}

// EvaluationResponse is one per-criterion rating within an evaluation.
// Rating is strictly in [1,5]; out-of-range values are dropped before insert.
type EvaluationResponse struct {
	ID           string `db:"id" json:"id"`
	EvaluationID string `db:"evaluation_id" json:"evaluation_id"`
	CriterionID  string `db:"criterion_id" json:"criterion_id"`
	Rating       int    `db:"rating" json:"rating"`
	Comment      string `db:"comment" json:"comment"`
}
