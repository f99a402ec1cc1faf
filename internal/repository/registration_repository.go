package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-registration-api/internal/models"
)

// RegistrationRepository reads admitted registrations. Inserts happen inside
// the admission transaction, see AdmissionRepository.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

type registrationRow struct {
	models.Registration
	SectionCode string `db:"section_code"`
	Capacity    int    `db:"capacity"`
	TermID      int64  `db:"term_id"`
}

// ListByStudentAndTerm returns the student's registrations with sections
// resolved down to courses and schedules. A zero termID lists every term.
func (r *RegistrationRepository) ListByStudentAndTerm(ctx context.Context, studentID string, termID int64) ([]models.RegistrationDetail, error) {
	conditions := []string{"r.student_id = $1"}
	args := []interface{}{studentID}
	if termID > 0 {
		conditions = append(conditions, fmt.Sprintf("s.term_id = $%d", len(args)+1))
		args = append(args, termID)
	}

	query := `SELECT r.id, r.student_id, r.section_id, r.created_at, s.section_code, s.capacity, s.term_id
        FROM registrations r
        JOIN sections s ON s.id = r.section_id
        WHERE ` + strings.Join(conditions, " AND ") + `
        ORDER BY r.created_at, r.id`

	var rows []registrationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list registrations by student: %w", err)
	}

	sectionIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		sectionIDs = append(sectionIDs, row.SectionID)
	}
	courses, err := loadSectionCourses(ctx, r.db, sectionIDs)
	if err != nil {
		return nil, err
	}

	details := make([]models.RegistrationDetail, 0, len(rows))
	for _, row := range rows {
		section := models.Section{
			ID:             row.SectionID,
			SectionCode:    row.SectionCode,
			Capacity:       row.Capacity,
			TermID:         row.TermID,
			SectionCourses: courses[row.SectionID],
		}
		if section.SectionCourses == nil {
			section.SectionCourses = []models.SectionCourse{}
		}
		details = append(details, models.RegistrationDetail{Registration: row.Registration, Section: section})
	}
	return details, nil
}

// ListBySection returns the roster of a section in admission order.
func (r *RegistrationRepository) ListBySection(ctx context.Context, sectionID int64) ([]models.RosterEntry, error) {
	const query = `SELECT r.id AS registration_id, r.student_id, COALESCE(u.full_name, '') AS full_name,
        COALESCE(u.email, '') AS email, r.created_at AS registered_at
        FROM registrations r
        LEFT JOIN users u ON u.id = r.student_id
        WHERE r.section_id = $1
        ORDER BY r.created_at, r.id`
	var entries []models.RosterEntry
	if err := r.db.SelectContext(ctx, &entries, query, sectionID); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return entries, nil
}
