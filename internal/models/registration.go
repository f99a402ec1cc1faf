package models

import "time"

// Registration admits a student into a section. At most one exists per
// (student, section) pair.
type Registration struct {
	ID        int64     `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"studentId"`
	SectionID int64     `db:"section_id" json:"sectionId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// RegistrationDetail pairs a registration with its resolved section, courses
// and schedules.
type RegistrationDetail struct {
	Registration
	Section Section `json:"section"`
}

// RosterEntry is a registered student as shown on a section roster.
type RosterEntry struct {
	RegistrationID int64     `db:"registration_id" json:"registrationId"`
	StudentID      string    `db:"student_id" json:"studentId"`
	FullName       string    `db:"full_name" json:"fullName"`
	Email          string    `db:"email" json:"email"`
	RegisteredAt   time.Time `db:"registered_at" json:"registeredAt"`
}
