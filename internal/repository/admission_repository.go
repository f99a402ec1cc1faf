package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-registration-api/internal/models"
)

// ErrTxConflict marks an admission transaction aborted by concurrent writers.
// Callers may retry the whole unit of work.
var ErrTxConflict = errors.New("admission transaction conflict")

// Postgres error codes treated as contention.
var conflictCodes = map[pq.ErrorCode]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
	"23505": {}, // unique_violation
}

// AdmissionTx exposes the reads and writes allowed while a section row is locked.
type AdmissionTx interface {
	HasRegistration(ctx context.Context, studentID string, sectionID int64) (bool, error)
	CountRegistrations(ctx context.Context, sectionID int64) (int, error)
	CreateRegistration(ctx context.Context, registration *models.Registration) error
	FindWaitlistEntry(ctx context.Context, studentID string, sectionID int64) (*models.WaitlistEntry, error)
	ListWaitlist(ctx context.Context, sectionID int64) ([]models.WaitlistEntry, error)
	CreateWaitlistEntry(ctx context.Context, entry *models.WaitlistEntry) error
}

// AdmissionRepository runs admission decisions as serializable transactions
// holding the section row lock.
type AdmissionRepository struct {
	db *sqlx.DB
}

// NewAdmissionRepository constructs the repository.
func NewAdmissionRepository(db *sqlx.DB) *AdmissionRepository {
	return &AdmissionRepository{db: db}
}

// WithinSectionLock locks the section row, passes its capacity to fn and
// commits when fn returns nil. A missing section yields sql.ErrNoRows.
// Contention at any point is reported as ErrTxConflict.
func (r *AdmissionRepository) WithinSectionLock(ctx context.Context, sectionID int64, fn func(tx AdmissionTx, capacity int) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return classifyTxError(fmt.Errorf("begin admission tx: %w", err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const lockQuery = `SELECT capacity FROM sections WHERE id = $1 FOR UPDATE`
	var capacity int
	if err = tx.GetContext(ctx, &capacity, lockQuery, sectionID); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return classifyTxError(fmt.Errorf("lock section: %w", err))
	}

	if err = fn(&admissionTx{tx: tx}, capacity); err != nil {
		return classifyTxError(err)
	}

	if err = tx.Commit(); err != nil {
		return classifyTxError(fmt.Errorf("commit admission tx: %w", err))
	}
	return nil
}

func classifyTxError(err error) error {
	if err == nil || errors.Is(err, ErrTxConflict) {
		return err
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if _, ok := conflictCodes[pqErr.Code]; ok {
			return fmt.Errorf("%w: %w", ErrTxConflict, err)
		}
	}
	return err
}

type admissionTx struct {
	tx *sqlx.Tx
}

func (a *admissionTx) HasRegistration(ctx context.Context, studentID string, sectionID int64) (bool, error) {
	const query = `SELECT 1 FROM registrations WHERE student_id = $1 AND section_id = $2 LIMIT 1`
	var exists int
	if err := a.tx.GetContext(ctx, &exists, query, studentID, sectionID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check registration: %w", err)
	}
	return true, nil
}

func (a *admissionTx) CountRegistrations(ctx context.Context, sectionID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM registrations WHERE section_id = $1`
	var count int
	if err := a.tx.GetContext(ctx, &count, query, sectionID); err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

func (a *admissionTx) CreateRegistration(ctx context.Context, registration *models.Registration) error {
	const query = `INSERT INTO registrations (student_id, section_id, created_at) VALUES ($1, $2, $3) RETURNING id`
	if err := a.tx.GetContext(ctx, &registration.ID, query, registration.StudentID, registration.SectionID, registration.CreatedAt); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

func (a *admissionTx) FindWaitlistEntry(ctx context.Context, studentID string, sectionID int64) (*models.WaitlistEntry, error) {
	const query = `SELECT id, student_id, section_id, sequence, created_at FROM waitlists WHERE student_id = $1 AND section_id = $2`
	var entry models.WaitlistEntry
	if err := a.tx.GetContext(ctx, &entry, query, studentID, sectionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find waitlist entry: %w", err)
	}
	return &entry, nil
}

func (a *admissionTx) ListWaitlist(ctx context.Context, sectionID int64) ([]models.WaitlistEntry, error) {
	const query = `SELECT id, student_id, section_id, sequence, created_at FROM waitlists WHERE section_id = $1 ORDER BY created_at, sequence`
	var entries []models.WaitlistEntry
	if err := a.tx.SelectContext(ctx, &entries, query, sectionID); err != nil {
		return nil, fmt.Errorf("list waitlist: %w", err)
	}
	return entries, nil
}

// CreateWaitlistEntry appends the entry, assigning the next sequence of the section.
func (a *admissionTx) CreateWaitlistEntry(ctx context.Context, entry *models.WaitlistEntry) error {
	const query = `INSERT INTO waitlists (student_id, section_id, sequence, created_at)
        SELECT $1, $2, COALESCE(MAX(sequence), 0) + 1, $3 FROM waitlists WHERE section_id = $2
        RETURNING id, sequence`
	row := a.tx.QueryRowxContext(ctx, query, entry.StudentID, entry.SectionID, entry.CreatedAt)
	if err := row.Scan(&entry.ID, &entry.Sequence); err != nil {
		return fmt.Errorf("create waitlist entry: %w", err)
	}
	return nil
}
