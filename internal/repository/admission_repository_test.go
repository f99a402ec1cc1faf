package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-registration-api/internal/models"
)

const lockSectionPattern = `SELECT capacity FROM sections WHERE id = \$1 FOR UPDATE`

func TestAdmissionRepositoryAdmitCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	createdAt := time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(lockSectionPattern).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(30))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM registrations")).WithArgs("stu-1", int64(5)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM registrations")).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO registrations")).WithArgs("stu-1", int64(5), createdAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(77)))
	mock.ExpectCommit()

	var registration models.Registration
	err := repo.WithinSectionLock(context.Background(), 5, func(tx AdmissionTx, capacity int) error {
		assert.Equal(t, 30, capacity)
		exists, err := tx.HasRegistration(context.Background(), "stu-1", 5)
		require.NoError(t, err)
		assert.False(t, exists)
		count, err := tx.CountRegistrations(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, 12, count)
		registration = models.Registration{StudentID: "stu-1", SectionID: 5, CreatedAt: createdAt}
		return tx.CreateRegistration(context.Background(), &registration)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(77), registration.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryWaitlistSequence(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(lockSectionPattern).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM waitlists WHERE student_id = $1 AND section_id = $2")).
		WithArgs("stu-9", int64(5)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("FROM waitlists WHERE section_id = $1 ORDER BY created_at, sequence")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "section_id", "sequence", "created_at"}).
			AddRow(int64(1), "stu-3", int64(5), int64(1), now))
	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(MAX(sequence), 0) + 1")).
		WithArgs("stu-9", int64(5), now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sequence"}).AddRow(int64(2), int64(2)))
	mock.ExpectCommit()

	entry := models.WaitlistEntry{StudentID: "stu-9", SectionID: 5, CreatedAt: now}
	err := repo.WithinSectionLock(context.Background(), 5, func(tx AdmissionTx, capacity int) error {
		existing, err := tx.FindWaitlistEntry(context.Background(), "stu-9", 5)
		require.NoError(t, err)
		assert.Nil(t, existing)
		queue, err := tx.ListWaitlist(context.Background(), 5)
		require.NoError(t, err)
		assert.Len(t, queue, 1)
		return tx.CreateWaitlistEntry(context.Background(), &entry)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), entry.Sequence)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryMissingSectionRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(lockSectionPattern).WithArgs(int64(404)).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	called := false
	err := repo.WithinSectionLock(context.Background(), 404, func(AdmissionTx, int) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmissionRepositoryClassifiesContention(t *testing.T) {
	codes := []pq.ErrorCode{"40001", "40P01", "55P03", "23505"}
	for _, code := range codes {
		t.Run(string(code), func(t *testing.T) {
			db, mock, cleanup := newMock(t)
			defer cleanup()
			repo := NewAdmissionRepository(db)

			mock.ExpectBegin()
			mock.ExpectQuery(lockSectionPattern).WithArgs(int64(5)).
				WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(30))
			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO registrations")).
				WillReturnError(&pq.Error{Code: code})
			mock.ExpectRollback()

			err := repo.WithinSectionLock(context.Background(), 5, func(tx AdmissionTx, _ int) error {
				return tx.CreateRegistration(context.Background(), &models.Registration{StudentID: "stu-1", SectionID: 5})
			})
			assert.ErrorIs(t, err, ErrTxConflict)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAdmissionRepositoryCommitConflict(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(lockSectionPattern).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(30))
	mock.ExpectCommit().WillReturnError(&pq.Error{Code: "40001"})

	err := repo.WithinSectionLock(context.Background(), 5, func(AdmissionTx, int) error { return nil })
	assert.ErrorIs(t, err, ErrTxConflict)
}

func TestAdmissionRepositoryPassesThroughOtherErrors(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAdmissionRepository(db)

	boom := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectQuery(lockSectionPattern).WithArgs(int64(5)).WillReturnError(boom)
	mock.ExpectRollback()

	err := repo.WithinSectionLock(context.Background(), 5, func(AdmissionTx, int) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrTxConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
