package models

import "time"

// Department represents an academic department (school).
type Department struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Acronym   string    `db:"acronym" json:"acronym"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// departmentAliases maps the acronyms accepted by lookup endpoints to the
// canonical department names.
var departmentAliases = map[string]string{
	"SOT":  "School of Technology",
	"SOB":  "School of Business",
	"SOE":  "School of Education",
	"SOHS": "School of Health Sciences",
}

// NormalizeDepartment resolves an acronym or full name to the canonical
// department name. Unknown values pass through unchanged so lookups fail
// against the catalog rather than here.
func NormalizeDepartment(raw string) string {
	if full, ok := departmentAliases[raw]; ok {
		return full
	}
	return raw
}
