package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrationRepositoryListByStudentAndTerm(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.student_id = $1 AND s.term_id = $2")).
		WithArgs("stu-1", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "section_id", "created_at", "section_code", "capacity", "term_id"}).
			AddRow(int64(1), "stu-1", int64(5), now, "MATH200-B", 25, int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta("FROM section_courses sc")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(sectionCourseColumns).
			AddRow(int64(20), int64(5), int64(4), nil, "MATH200", "Linear Algebra", int64(4), int64(300), "Monday", utcClock(10, 0), utcClock(11, 0), nil))

	details, err := repo.ListByStudentAndTerm(context.Background(), "stu-1", 1)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, int64(5), details[0].SectionID)
	assert.Equal(t, "MATH200-B", details[0].Section.SectionCode)
	assert.Equal(t, "MATH200", details[0].Section.PrimaryCourse().Code)
	assert.Len(t, details[0].Section.Schedules(), 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryListByStudentEmpty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.student_id = $1")).
		WithArgs("stu-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "section_id", "created_at", "section_code", "capacity", "term_id"}))

	details, err := repo.ListByStudentAndTerm(context.Background(), "stu-2", 0)
	require.NoError(t, err)
	assert.NotNil(t, details)
	assert.Empty(t, details)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationRepositoryListBySection(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN users u ON u.id = r.student_id")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"registration_id", "student_id", "full_name", "email", "registered_at"}).
			AddRow(int64(1), "stu-1", "Ayu Lestari", "ayu@example.com", now).
			AddRow(int64(2), "stu-2", "", "", now.Add(time.Minute)))

	roster, err := repo.ListBySection(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Ayu Lestari", roster[0].FullName)
	assert.Equal(t, "stu-2", roster[1].StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitlistRepositoryListBySection(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewWaitlistRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at, sequence")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "section_id", "sequence", "created_at"}).
			AddRow(int64(1), "stu-3", int64(5), int64(1), now).
			AddRow(int64(2), "stu-4", int64(5), int64(2), now))

	entries, err := repo.ListBySection(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(2), entries[1].Sequence)
	assert.NoError(t, mock.ExpectationsWereMet())
}
