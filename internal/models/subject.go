package models

import "time"

// Subject represents a catalog entry. Code may be absent; name is mandatory.
// Uniqueness is on (department, code) when a code is present.
type Subject struct {
	ID           string    `db:"id" json:"id"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Code         *string   `db:"code" json:"code,omitempty"`
	Name         string    `db:"name" json:"name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// FacultySubject assigns a subject to a faculty member.
type FacultySubject struct {
	ID        string    `db:"id" json:"id"`
	FacultyID string    `db:"faculty_id" json:"faculty_id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
