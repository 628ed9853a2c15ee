package models

// Criterion is one rubric item of the evaluation form. Only active criteria
// are offered to evaluators and accepted in submissions.
type Criterion struct {
	ID        string `db:"id" json:"id"`
	Category  string `db:"category" json:"category"`
	Criterion string `db:"criterion" json:"criterion"`
	Active    bool   `db:"active" json:"active"`
	SortOrder int    `db:"sort_order" json:"sort_order"`
}
