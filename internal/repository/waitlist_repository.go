package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-registration-api/internal/models"
)

// WaitlistRepository reads waitlist queues.
type WaitlistRepository struct {
	db *sqlx.DB
}

// NewWaitlistRepository constructs the repository.
func NewWaitlistRepository(db *sqlx.DB) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

// ListBySection returns every entry queued for the section in queue order.
func (r *WaitlistRepository) ListBySection(ctx context.Context, sectionID int64) ([]models.WaitlistEntry, error) {
	const query = `SELECT id, student_id, section_id, sequence, created_at FROM waitlists WHERE section_id = $1 ORDER BY created_at, sequence`
	var entries []models.WaitlistEntry
	if err := r.db.SelectContext(ctx, &entries, query, sectionID); err != nil {
		return nil, fmt.Errorf("list waitlist by section: %w", err)
	}
	return entries, nil
}

// ListByStudent returns every entry the student holds across sections.
func (r *WaitlistRepository) ListByStudent(ctx context.Context, studentID string) ([]models.WaitlistEntry, error) {
	const query = `SELECT id, student_id, section_id, sequence, created_at FROM waitlists WHERE student_id = $1 ORDER BY created_at, id`
	var entries []models.WaitlistEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID); err != nil {
		return nil, fmt.Errorf("list waitlist by student: %w", err)
	}
	return entries, nil
}
