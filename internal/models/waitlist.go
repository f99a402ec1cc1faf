package models

import "time"

// WaitlistEntry queues a student for a full section. Sequence is unique per
// section and, with CreatedAt, defines the queue order.
type WaitlistEntry struct {
	ID        int64     `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"studentId"`
	SectionID int64     `db:"section_id" json:"sectionId"`
	Sequence  int64     `db:"sequence" json:"sequence"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Before reports whether e is ahead of other in the queue.
func (e WaitlistEntry) Before(other WaitlistEntry) bool {
	if !e.CreatedAt.Equal(other.CreatedAt) {
		return e.CreatedAt.Before(other.CreatedAt)
	}
	return e.Sequence < other.Sequence
}

// RankedWaitlistEntry is a waitlist entry annotated with its 1-based position.
type RankedWaitlistEntry struct {
	WaitlistEntry
	Position int `json:"position"`
}
