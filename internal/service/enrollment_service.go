package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-registration-api/internal/models"
	"github.com/noah-isme/course-registration-api/internal/repository"
)

type enrollmentSectionReader interface {
	FindWithSchedules(ctx context.Context, id int64) (*models.Section, error)
}

type enrollmentRegistrationReader interface {
	ListByStudentAndTerm(ctx context.Context, studentID string, termID int64) ([]models.RegistrationDetail, error)
}

type admissionStore interface {
	WithinSectionLock(ctx context.Context, sectionID int64, fn func(tx repository.AdmissionTx, capacity int) error) error
}

type availabilityInvalidator interface {
	InvalidateSection(ctx context.Context, sectionID int64)
}

type enrollmentEventPublisher interface {
	Publish(event EnrollmentEvent)
}

// EnrollmentConfig tunes retries and the transaction deadline.
type EnrollmentConfig struct {
	MaxAttempts  int
	RetryBackoff time.Duration
	TxTimeout    time.Duration
}

// AdmissionResult is the outcome of one enrollment request. Callers branch on
// Status; Err carries the cause of BUSY and FAILURE for logging only.
type AdmissionResult struct {
	Status           models.AdmissionStatus
	Registration     *models.Registration
	WaitlistEntry    *models.WaitlistEntry
	WaitlistPosition int
	Clashes          []models.ClashReport
	Message          string
	Attempts         int
	Err              error
}

// EnrollCommand carries the request payload and who issued it.
type EnrollCommand struct {
	models.EnrollRequest
	ActorID   string
	IP        string
	UserAgent string
}

// EnrollmentService decides whether a student is admitted to, waitlisted for,
// or rejected from a section.
type EnrollmentService struct {
	sections      enrollmentSectionReader
	registrations enrollmentRegistrationReader
	store         admissionStore
	invalidator   availabilityInvalidator
	events        enrollmentEventPublisher
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	config        EnrollmentConfig
	now           func() time.Time
	sleep         func(ctx context.Context, d time.Duration) error
}

// EnrollmentDeps groups optional collaborators of the service.
type EnrollmentDeps struct {
	Invalidator availabilityInvalidator
	Events      enrollmentEventPublisher
	Metrics     *MetricsService
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(sections enrollmentSectionReader, registrations enrollmentRegistrationReader, store admissionStore, cfg EnrollmentConfig, deps EnrollmentDeps) *EnrollmentService {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBackoff < 0 {
		cfg.RetryBackoff = 0
	}
	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = 5 * time.Second
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	return &EnrollmentService{
		sections:      sections,
		registrations: registrations,
		store:         store,
		invalidator:   deps.Invalidator,
		events:        deps.Events,
		metrics:       deps.Metrics,
		validator:     deps.Validator,
		logger:        deps.Logger,
		config:        cfg,
		now:           func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		sleep:         sleepContext,
	}
}

// Enroll runs the admission decision, retrying the whole decision from fresh
// reads when the transaction loses a race with a concurrent request.
func (s *EnrollmentService) Enroll(ctx context.Context, cmd EnrollCommand) *AdmissionResult {
	if err := s.validator.Struct(cmd.EnrollRequest); err != nil {
		return &AdmissionResult{Status: models.AdmissionInvalid, Message: validationMessage(err)}
	}

	var lastConflict error
	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		result, err := s.attempt(ctx, cmd.EnrollRequest)
		if err == nil {
			result.Attempts = attempt
			return s.finish(ctx, cmd, result)
		}

		if !errors.Is(err, repository.ErrTxConflict) {
			return s.finish(ctx, cmd, &AdmissionResult{Status: models.AdmissionFailure, Attempts: attempt, Err: err})
		}

		lastConflict = err
		s.metrics.RecordAdmissionConflict()
		s.logger.Debug("admission conflict, retrying",
			zap.String("student_id", cmd.StudentID),
			zap.Int64("section_id", cmd.SectionID),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt < s.config.MaxAttempts {
			if err := s.sleep(ctx, s.config.RetryBackoff*time.Duration(attempt)); err != nil {
				return s.finish(ctx, cmd, &AdmissionResult{Status: models.AdmissionFailure, Attempts: attempt, Err: err})
			}
		}
	}

	return s.finish(ctx, cmd, &AdmissionResult{
		Status:   models.AdmissionBusy,
		Message:  "The section is receiving many requests. Please try again.",
		Attempts: s.config.MaxAttempts,
		Err:      lastConflict,
	})
}

// attempt performs one full decision. A returned error is either
// repository.ErrTxConflict (retryable) or an infrastructure failure.
func (s *EnrollmentService) attempt(ctx context.Context, req models.EnrollRequest) (*AdmissionResult, error) {
	section, err := s.sections.FindWithSchedules(ctx, req.SectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &AdmissionResult{Status: models.AdmissionNotFound}, nil
		}
		return nil, fmt.Errorf("load section: %w", err)
	}

	held, err := s.registrations.ListByStudentAndTerm(ctx, req.StudentID, section.TermID)
	if err != nil {
		return nil, fmt.Errorf("load student registrations: %w", err)
	}

	others := make([]models.RegistrationDetail, 0, len(held))
	for _, registration := range held {
		if registration.SectionID == section.ID {
			return &AdmissionResult{Status: models.AdmissionAlreadyRegistered}, nil
		}
		others = append(others, registration)
	}

	if clashes := FindTimeClashes(section.Schedules(), others); len(clashes) > 0 {
		return &AdmissionResult{Status: models.AdmissionTimeClash, Clashes: clashes}, nil
	}

	txCtx, cancel := context.WithTimeout(ctx, s.config.TxTimeout)
	defer cancel()

	var result *AdmissionResult
	start := time.Now()
	err = s.store.WithinSectionLock(txCtx, section.ID, func(tx repository.AdmissionTx, capacity int) error {
		var txErr error
		result, txErr = s.admit(txCtx, tx, req, capacity)
		return txErr
	})
	s.metrics.ObserveDBQuery("admission_tx", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &AdmissionResult{Status: models.AdmissionNotFound}, nil
		}
		return nil, err
	}
	return result, nil
}

// admit runs under the section row lock.
func (s *EnrollmentService) admit(ctx context.Context, tx repository.AdmissionTx, req models.EnrollRequest, capacity int) (*AdmissionResult, error) {
	registered, err := tx.HasRegistration(ctx, req.StudentID, req.SectionID)
	if err != nil {
		return nil, err
	}
	if registered {
		return &AdmissionResult{Status: models.AdmissionAlreadyRegistered}, nil
	}

	count, err := tx.CountRegistrations(ctx, req.SectionID)
	if err != nil {
		return nil, err
	}
	if count < capacity {
		registration := &models.Registration{StudentID: req.StudentID, SectionID: req.SectionID, CreatedAt: s.now()}
		if err := tx.CreateRegistration(ctx, registration); err != nil {
			return nil, err
		}
		return &AdmissionResult{Status: models.AdmissionAdmitted, Registration: registration}, nil
	}

	existing, err := tx.FindWaitlistEntry(ctx, req.StudentID, req.SectionID)
	if err != nil {
		return nil, err
	}
	queue, err := tx.ListWaitlist(ctx, req.SectionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &AdmissionResult{
			Status:           models.AdmissionAlreadyWaitlisted,
			WaitlistEntry:    existing,
			WaitlistPosition: WaitlistPosition(*existing, queue),
		}, nil
	}

	entry := &models.WaitlistEntry{StudentID: req.StudentID, SectionID: req.SectionID, CreatedAt: queueTail(s.now(), queue)}
	if err := tx.CreateWaitlistEntry(ctx, entry); err != nil {
		return nil, err
	}
	return &AdmissionResult{
		Status:           models.AdmissionWaitlisted,
		WaitlistEntry:    entry,
		WaitlistPosition: len(queue) + 1,
	}, nil
}

// queueTail never stamps a new entry before the current tail, so a clock that
// lags or steps back cannot move it ahead of entries already placed.
func queueTail(now time.Time, queue []models.WaitlistEntry) time.Time {
	for _, e := range queue {
		if e.CreatedAt.After(now) {
			now = e.CreatedAt
		}
	}
	return now
}

func (s *EnrollmentService) finish(ctx context.Context, cmd EnrollCommand, result *AdmissionResult) *AdmissionResult {
	fields := []zap.Field{
		zap.String("student_id", cmd.StudentID),
		zap.Int64("section_id", cmd.SectionID),
		zap.String("status", string(result.Status)),
		zap.Int("attempts", result.Attempts),
	}
	switch result.Status {
	case models.AdmissionFailure:
		s.logger.Error("enrollment failed", append(fields, zap.Error(result.Err))...)
	case models.AdmissionBusy:
		s.logger.Warn("enrollment retries exhausted", append(fields, zap.Error(result.Err))...)
	default:
		s.logger.Info("enrollment decided", fields...)
	}

	s.metrics.RecordAdmission(result.Status, result.Attempts)

	if result.Status.Wrote() && s.invalidator != nil {
		s.invalidator.InvalidateSection(context.WithoutCancel(ctx), cmd.SectionID)
	}

	if s.events != nil && auditable(result.Status) {
		event := EnrollmentEvent{
			Status:     result.Status,
			StudentID:  cmd.StudentID,
			SectionID:  cmd.SectionID,
			ActorID:    cmd.ActorID,
			ClashCount: len(result.Clashes),
			Attempts:   result.Attempts,
			IP:         cmd.IP,
			UserAgent:  cmd.UserAgent,
			OccurredAt: s.now(),
		}
		if result.Registration != nil {
			event.RegistrationID = result.Registration.ID
		}
		if result.WaitlistEntry != nil {
			event.WaitlistSeq = result.WaitlistEntry.Sequence
			event.Position = result.WaitlistPosition
		}
		s.events.Publish(event)
	}

	return result
}

func auditable(status models.AdmissionStatus) bool {
	switch status {
	case models.AdmissionAdmitted, models.AdmissionWaitlisted, models.AdmissionTimeClash:
		return true
	default:
		return false
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Field() {
		case "StudentID":
			return "studentId is required"
		case "SectionID":
			return "sectionId must be a positive integer"
		}
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
	return err.Error()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
