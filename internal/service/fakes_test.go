package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/noah-isme/course-registration-api/internal/models"
	"github.com/noah-isme/course-registration-api/internal/repository"
)

// fakeCampus is an in-memory catalog and admission store. WithinSectionLock
// serialises transactions the way the section row lock does.
type fakeCampus struct {
	mu            sync.Mutex
	rowLock       sync.Mutex
	sections      map[int64]*models.Section
	registrations []models.Registration
	waitlist      []models.WaitlistEntry
	nextID        int64

	conflicts  int
	txErr      error
	dropOnLock bool
	lockCalls  int
	sectionErr error
	listErr    error
}

func newFakeCampus(sections ...*models.Section) *fakeCampus {
	c := &fakeCampus{sections: make(map[int64]*models.Section)}
	for _, s := range sections {
		c.sections[s.ID] = s
	}
	return c
}

func meeting(day models.DayOfWeek, startHour, startMinute, endHour, endMinute int) models.Schedule {
	return models.Schedule{
		DayOfWeek: day,
		StartTime: models.NewClockTime(startHour, startMinute),
		EndTime:   models.NewClockTime(endHour, endMinute),
	}
}

func newSection(id, termID int64, capacity int, code, title string, meetings ...models.Schedule) *models.Section {
	return &models.Section{
		ID:          id,
		SectionCode: fmt.Sprintf("%s-%d", code, id),
		Capacity:    capacity,
		TermID:      termID,
		SectionCourses: []models.SectionCourse{{
			ID:        id * 10,
			SectionID: id,
			Course:    &models.Course{ID: id * 100, Code: code, Title: title},
			Schedules: meetings,
		}},
	}
}

func (c *fakeCampus) seedRegistration(studentID string, sectionID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.registrations = append(c.registrations, models.Registration{ID: c.nextID, StudentID: studentID, SectionID: sectionID})
}

func (c *fakeCampus) seedWaitlist(entry models.WaitlistEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	entry.ID = c.nextID
	c.waitlist = append(c.waitlist, entry)
}

func (c *fakeCampus) countRegistrations(sectionID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, r := range c.registrations {
		if r.SectionID == sectionID {
			n++
		}
	}
	return n
}

func (c *fakeCampus) waitlistFor(sectionID int64) []models.WaitlistEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.WaitlistEntry
	for _, w := range c.waitlist {
		if w.SectionID == sectionID {
			out = append(out, w)
		}
	}
	return out
}

func (c *fakeCampus) FindWithSchedules(ctx context.Context, id int64) (*models.Section, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sectionErr != nil {
		return nil, c.sectionErr
	}
	s, ok := c.sections[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (c *fakeCampus) FindByID(ctx context.Context, id int64) (*models.Section, error) {
	return c.FindWithSchedules(ctx, id)
}

func (c *fakeCampus) ListByStudentAndTerm(ctx context.Context, studentID string, termID int64) ([]models.RegistrationDetail, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listErr != nil {
		return nil, c.listErr
	}
	details := make([]models.RegistrationDetail, 0)
	for _, r := range c.registrations {
		section, ok := c.sections[r.SectionID]
		if r.StudentID != studentID || !ok {
			continue
		}
		if termID > 0 && section.TermID != termID {
			continue
		}
		details = append(details, models.RegistrationDetail{Registration: r, Section: *section})
	}
	return details, nil
}

func (c *fakeCampus) ListBySection(ctx context.Context, sectionID int64) ([]models.WaitlistEntry, error) {
	return c.waitlistFor(sectionID), nil
}

func (c *fakeCampus) ListByStudent(ctx context.Context, studentID string) ([]models.WaitlistEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.WaitlistEntry
	for _, w := range c.waitlist {
		if w.StudentID == studentID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (c *fakeCampus) WithinSectionLock(ctx context.Context, sectionID int64, fn func(tx repository.AdmissionTx, capacity int) error) error {
	c.rowLock.Lock()
	defer c.rowLock.Unlock()

	c.mu.Lock()
	c.lockCalls++
	if c.conflicts > 0 {
		c.conflicts--
		c.mu.Unlock()
		return fmt.Errorf("%w: serialization failure", repository.ErrTxConflict)
	}
	if c.txErr != nil {
		err := c.txErr
		c.mu.Unlock()
		return err
	}
	if c.dropOnLock {
		delete(c.sections, sectionID)
	}
	section, ok := c.sections[sectionID]
	c.mu.Unlock()
	if !ok {
		return sql.ErrNoRows
	}

	tx := &fakeTx{campus: c}
	if err := fn(tx, section.Capacity); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range tx.registrations {
		c.nextID++
		r.ID = c.nextID
		*r.target = r.Registration
		c.registrations = append(c.registrations, r.Registration)
	}
	c.waitlist = append(c.waitlist, tx.waitlist...)
	return nil
}

type stagedRegistration struct {
	models.Registration
	target *models.Registration
}

type fakeTx struct {
	campus        *fakeCampus
	registrations []stagedRegistration
	waitlist      []models.WaitlistEntry
}

func (t *fakeTx) HasRegistration(ctx context.Context, studentID string, sectionID int64) (bool, error) {
	t.campus.mu.Lock()
	defer t.campus.mu.Unlock()
	for _, r := range t.campus.registrations {
		if r.StudentID == studentID && r.SectionID == sectionID {
			return true, nil
		}
	}
	return false, nil
}

func (t *fakeTx) CountRegistrations(ctx context.Context, sectionID int64) (int, error) {
	return t.campus.countRegistrations(sectionID), nil
}

func (t *fakeTx) CreateRegistration(ctx context.Context, registration *models.Registration) error {
	t.registrations = append(t.registrations, stagedRegistration{Registration: *registration, target: registration})
	return nil
}

func (t *fakeTx) FindWaitlistEntry(ctx context.Context, studentID string, sectionID int64) (*models.WaitlistEntry, error) {
	for _, w := range t.campus.waitlistFor(sectionID) {
		if w.StudentID == studentID {
			entry := w
			return &entry, nil
		}
	}
	return nil, nil
}

func (t *fakeTx) ListWaitlist(ctx context.Context, sectionID int64) ([]models.WaitlistEntry, error) {
	return t.campus.waitlistFor(sectionID), nil
}

func (t *fakeTx) CreateWaitlistEntry(ctx context.Context, entry *models.WaitlistEntry) error {
	var maxSeq int64
	for _, w := range t.campus.waitlistFor(entry.SectionID) {
		if w.Sequence > maxSeq {
			maxSeq = w.Sequence
		}
	}
	t.campus.mu.Lock()
	t.campus.nextID++
	entry.ID = t.campus.nextID
	t.campus.mu.Unlock()
	entry.Sequence = maxSeq + 1
	t.waitlist = append(t.waitlist, *entry)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []EnrollmentEvent
}

func (p *recordingPublisher) Publish(event EnrollmentEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

type recordingInvalidator struct {
	mu       sync.Mutex
	sections []int64
}

func (r *recordingInvalidator) InvalidateSection(ctx context.Context, sectionID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sections = append(r.sections, sectionID)
}
