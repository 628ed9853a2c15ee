package models

import "time"

// Enrollment links a student to a (faculty, subject) pair. It is the
// authorization edge deciding which student may evaluate which faculty for
// which subject.
type Enrollment struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	FacultyID string    `db:"faculty_id" json:"faculty_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// EnrollmentDetail carries the enrollment with display context.
type EnrollmentDetail struct {
	Enrollment
	FacultyName string  `db:"faculty_name" json:"faculty_name"`
	SubjectName string  `db:"subject_name" json:"subject_name"`
	SubjectCode *string `db:"subject_code" json:"subject_code,omitempty"`
}
