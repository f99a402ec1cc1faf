package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-registration-api/internal/models"
)

// SectionRepository reads sections with their courses and schedules.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs the repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

type sectionRow struct {
	models.Section
	TermYear     sql.NullInt64  `db:"term_year"`
	TermSemester sql.NullString `db:"term_semester"`
}

// FindByID returns the bare section row. Missing sections yield sql.ErrNoRows.
func (r *SectionRepository) FindByID(ctx context.Context, id int64) (*models.Section, error) {
	const query = `SELECT id, section_code, capacity, term_id FROM sections WHERE id = $1`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find section: %w", err)
	}
	section.SectionCourses = []models.SectionCourse{}
	return &section, nil
}

// FindWithSchedules returns the section with its term, courses and schedules.
func (r *SectionRepository) FindWithSchedules(ctx context.Context, id int64) (*models.Section, error) {
	const query = `SELECT s.id, s.section_code, s.capacity, s.term_id, t.year AS term_year, t.semester AS term_semester
        FROM sections s
        LEFT JOIN terms t ON t.id = s.term_id
        WHERE s.id = $1`
	var row sectionRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find section with schedules: %w", err)
	}

	section := row.Section
	if row.TermYear.Valid {
		section.Term = &models.Term{ID: section.TermID, Year: int(row.TermYear.Int64), Semester: row.TermSemester.String}
	}

	courses, err := loadSectionCourses(ctx, r.db, []int64{section.ID})
	if err != nil {
		return nil, err
	}
	section.SectionCourses = courses[section.ID]
	if section.SectionCourses == nil {
		section.SectionCourses = []models.SectionCourse{}
	}
	return &section, nil
}

// Availability counts registrations and waitlist entries for a section.
func (r *SectionRepository) Availability(ctx context.Context, id int64) (*models.SectionAvailability, error) {
	const query = `SELECT s.id AS section_id, s.capacity,
        (SELECT COUNT(*) FROM registrations r WHERE r.section_id = s.id) AS registered,
        (SELECT COUNT(*) FROM waitlists w WHERE w.section_id = s.id) AS waitlisted
        FROM sections s WHERE s.id = $1`
	var availability models.SectionAvailability
	if err := r.db.GetContext(ctx, &availability, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("section availability: %w", err)
	}
	availability.Normalize()
	return &availability, nil
}
