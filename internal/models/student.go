package models

import "time"

// Student represents the academic profile of a user with the STUDENT role.
type Student struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	StudentNo string    `db:"student_no" json:"student_no"`
	Program   string    `db:"program" json:"program"`
	YearLevel int       `db:"year_level" json:"year_level"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetail joins the student profile with its user identity.
type StudentDetail struct {
	Student
	FullName     string  `db:"full_name" json:"full_name"`
	Email        string  `db:"email" json:"email"`
	DepartmentID *string `db:"department_id" json:"department_id,omitempty"`
}
