package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/course-registration-api/internal/models"
	appErrors "github.com/noah-isme/course-registration-api/pkg/errors"
)

type sectionFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Section, error)
	FindWithSchedules(ctx context.Context, id int64) (*models.Section, error)
}

type waitlistReader interface {
	ListBySection(ctx context.Context, sectionID int64) ([]models.WaitlistEntry, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.WaitlistEntry, error)
}

// SectionService exposes read models of a section.
type SectionService struct {
	sections  sectionFinder
	waitlists waitlistReader
}

// NewSectionService constructs the service.
func NewSectionService(sections sectionFinder, waitlists waitlistReader) *SectionService {
	return &SectionService{sections: sections, waitlists: waitlists}
}

// Get returns the section with its courses and schedules.
func (s *SectionService) Get(ctx context.Context, sectionID int64) (*models.Section, error) {
	section, err := s.sections.FindWithSchedules(ctx, sectionID)
	if err != nil {
		return nil, mapSectionErr(err, "failed to load section")
	}
	return section, nil
}

// Waitlist returns the section queue in order with positions.
func (s *SectionService) Waitlist(ctx context.Context, sectionID int64) ([]models.RankedWaitlistEntry, error) {
	if _, err := s.sections.FindByID(ctx, sectionID); err != nil {
		return nil, mapSectionErr(err, "failed to load section")
	}
	entries, err := s.waitlists.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load waitlist")
	}
	return OrderWaitlist(entries), nil
}

func mapSectionErr(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "section not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
