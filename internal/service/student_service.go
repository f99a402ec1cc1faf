package service

import (
	"context"

	"github.com/noah-isme/course-registration-api/internal/models"
	appErrors "github.com/noah-isme/course-registration-api/pkg/errors"
)

type studentRegistrationReader interface {
	ListByStudentAndTerm(ctx context.Context, studentID string, termID int64) ([]models.RegistrationDetail, error)
}

// StudentService answers "my registrations" and "my waitlists" queries.
type StudentService struct {
	registrations studentRegistrationReader
	waitlists     waitlistReader
}

// NewStudentService constructs the service.
func NewStudentService(registrations studentRegistrationReader, waitlists waitlistReader) *StudentService {
	return &StudentService{registrations: registrations, waitlists: waitlists}
}

// Registrations lists the student's registrations, optionally limited to a term.
func (s *StudentService) Registrations(ctx context.Context, studentID string, termID int64) ([]models.RegistrationDetail, error) {
	details, err := s.registrations.ListByStudentAndTerm(ctx, studentID, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registrations")
	}
	return details, nil
}

// Waitlists lists every waitlist entry of the student with its current position.
func (s *StudentService) Waitlists(ctx context.Context, studentID string) ([]models.RankedWaitlistEntry, error) {
	entries, err := s.waitlists.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load waitlists")
	}

	queues := make(map[int64][]models.WaitlistEntry)
	ranked := make([]models.RankedWaitlistEntry, 0, len(entries))
	for _, entry := range entries {
		queue, ok := queues[entry.SectionID]
		if !ok {
			queue, err = s.waitlists.ListBySection(ctx, entry.SectionID)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load waitlist")
			}
			queues[entry.SectionID] = queue
		}
		ranked = append(ranked, models.RankedWaitlistEntry{WaitlistEntry: entry, Position: WaitlistPosition(entry, queue)})
	}
	return ranked, nil
}
