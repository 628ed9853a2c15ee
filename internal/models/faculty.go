package models

import "time"

// Faculty represents the employee profile of a user with the FACULTY role.
type Faculty struct {
	ID         string     `db:"id" json:"id"`
	UserID     string     `db:"user_id" json:"user_id"`
	EmployeeNo string     `db:"employee_no" json:"employee_no"`
	Position   string     `db:"position" json:"position"`
	HireDate   *time.Time `db:"hire_date" json:"hire_date,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// FacultyDetail joins the faculty profile with its user identity.
type FacultyDetail struct {
	Faculty
	FullName       string  `db:"full_name" json:"full_name"`
	Email          string  `db:"email" json:"email"`
	DepartmentID   *string `db:"department_id" json:"department_id,omitempty"`
	DepartmentName *string `db:"department_name" json:"department_name,omitempty"`
}

// FacultyFilter captures filtering options for faculty listings.
type FacultyFilter struct {
	Department string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
