package models

// Course is a catalog entry offered through one or more sections.
type Course struct {
	ID          int64  `db:"id" json:"id"`
	Code        string `db:"code" json:"code"`
	Title       string `db:"title" json:"title"`
	CreditHours int    `db:"credit_hours" json:"creditHours"`
}
