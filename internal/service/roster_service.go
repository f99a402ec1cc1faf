package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/course-registration-api/internal/models"
	appErrors "github.com/noah-isme/course-registration-api/pkg/errors"
	"github.com/noah-isme/course-registration-api/pkg/export"
)

type rosterSectionReader interface {
	FindWithSchedules(ctx context.Context, id int64) (*models.Section, error)
}

type rosterReader interface {
	ListBySection(ctx context.Context, sectionID int64) ([]models.RosterEntry, error)
}

type rosterRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
	Extension() string
}

// RosterFile is a rendered roster ready to stream.
type RosterFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// RosterService renders section rosters as CSV or PDF downloads.
type RosterService struct {
	sections  rosterSectionReader
	roster    rosterReader
	renderers map[string]rosterRenderer
	logger    *zap.Logger
}

// NewRosterService constructs the service with the CSV and PDF renderers.
func NewRosterService(sections rosterSectionReader, roster rosterReader, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{
		sections: sections,
		roster:   roster,
		renderers: map[string]rosterRenderer{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		},
		logger: logger,
	}
}

var rosterHeaders = []string{"No", "Student ID", "Name", "Email", "Registered At"}

// Export renders the roster of a section in the requested format.
func (s *RosterService) Export(ctx context.Context, sectionID int64, format string) (*RosterFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	section, err := s.sections.FindWithSchedules(ctx, sectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	entries, err := s.roster.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	dataset := export.Dataset{Headers: rosterHeaders, Rows: make([]map[string]string, 0, len(entries))}
	for i, entry := range entries {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"No":            fmt.Sprintf("%d", i+1),
			"Student ID":    entry.StudentID,
			"Name":          entry.FullName,
			"Email":         entry.Email,
			"Registered At": entry.RegisteredAt.UTC().Format("2006-01-02 15:04"),
		})
	}

	payload, err := renderer.Render(dataset, rosterTitle(section, len(entries)))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}

	s.logger.Info("roster exported", zap.Int64("section_id", sectionID), zap.String("format", format), zap.Int("rows", len(entries)))
	return &RosterFile{
		Filename:    fmt.Sprintf("roster-%s.%s", section.SectionCode, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Payload:     payload,
	}, nil
}

func rosterTitle(section *models.Section, registered int) string {
	title := "Section " + section.SectionCode
	if course := section.PrimaryCourse(); course != nil {
		title = fmt.Sprintf("%s %s (%s)", course.Code, course.Title, section.SectionCode)
	}
	if section.Term != nil {
		title += " - " + section.Term.Label()
	}
	return fmt.Sprintf("%s - %d/%d enrolled", title, registered, section.Capacity)
}
