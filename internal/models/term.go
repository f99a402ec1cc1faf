package models

import "fmt"

// Term models an academic period. Sections and registrations belong to exactly one term.
type Term struct {
	ID       int64  `db:"id" json:"id"`
	Year     int    `db:"year" json:"year"`
	Semester string `db:"semester" json:"semester"`
}

// Label renders the term as shown to students, e.g. "Fall 2026".
func (t Term) Label() string {
	return fmt.Sprintf("%s %d", t.Semester, t.Year)
}
