package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-registration-api/internal/models"
)

const sectionCoursesQuery = `SELECT sc.id AS section_course_id, sc.section_id, sc.course_id, sc.faculty_id,
        c.code AS course_code, c.title AS course_title, c.credit_hours,
        sch.id AS schedule_id, sch.day_of_week, sch.start_time, sch.end_time, rm.room_code
        FROM section_courses sc
        LEFT JOIN courses c ON c.id = sc.course_id
        LEFT JOIN schedules sch ON sch.section_course_id = sc.id
        LEFT JOIN rooms rm ON rm.id = sch.room_id
        WHERE sc.section_id = ANY($1)
        ORDER BY sc.section_id, sc.id, sch.id`

type sectionCourseRow struct {
	SectionCourseID int64          `db:"section_course_id"`
	SectionID       int64          `db:"section_id"`
	CourseID        int64          `db:"course_id"`
	FacultyID       sql.NullString `db:"faculty_id"`
	CourseCode      sql.NullString `db:"course_code"`
	CourseTitle     sql.NullString `db:"course_title"`
	CreditHours     sql.NullInt64  `db:"credit_hours"`
	ScheduleID      sql.NullInt64  `db:"schedule_id"`
	DayOfWeek       sql.NullString `db:"day_of_week"`
	StartTime       sql.NullTime   `db:"start_time"`
	EndTime         sql.NullTime   `db:"end_time"`
	RoomCode        sql.NullString `db:"room_code"`
}

// loadSectionCourses resolves courses and meeting slots for the given sections,
// keyed by section id. Stored timestamps are reduced to weekday relative slots here.
func loadSectionCourses(ctx context.Context, q sqlx.QueryerContext, sectionIDs []int64) (map[int64][]models.SectionCourse, error) {
	result := make(map[int64][]models.SectionCourse, len(sectionIDs))
	if len(sectionIDs) == 0 {
		return result, nil
	}

	var rows []sectionCourseRow
	if err := sqlx.SelectContext(ctx, q, &rows, sectionCoursesQuery, pq.Array(sectionIDs)); err != nil {
		return nil, fmt.Errorf("load section courses: %w", err)
	}

	for _, row := range rows {
		courses := result[row.SectionID]
		if len(courses) == 0 || courses[len(courses)-1].ID != row.SectionCourseID {
			sc := models.SectionCourse{
				ID:        row.SectionCourseID,
				SectionID: row.SectionID,
				CourseID:  row.CourseID,
				Schedules: []models.Schedule{},
			}
			if row.FacultyID.Valid {
				faculty := row.FacultyID.String
				sc.FacultyID = &faculty
			}
			if row.CourseCode.Valid {
				sc.Course = &models.Course{
					ID:          row.CourseID,
					Code:        row.CourseCode.String,
					Title:       row.CourseTitle.String,
					CreditHours: int(row.CreditHours.Int64),
				}
			}
			courses = append(courses, sc)
		}

		if row.ScheduleID.Valid && row.StartTime.Valid && row.EndTime.Valid {
			day, err := models.ParseDayOfWeek(row.DayOfWeek.String)
			if err != nil {
				return nil, fmt.Errorf("schedule %d: %w", row.ScheduleID.Int64, err)
			}
			slot := models.NewTimeSlot(day, row.StartTime.Time, row.EndTime.Time)
			last := &courses[len(courses)-1]
			last.Schedules = append(last.Schedules, models.Schedule{
				ID:              row.ScheduleID.Int64,
				SectionCourseID: row.SectionCourseID,
				DayOfWeek:       slot.Day,
				StartTime:       slot.Start,
				EndTime:         slot.End,
				RoomCode:        row.RoomCode.String,
			})
		}
		result[row.SectionID] = courses
	}

	return result, nil
}
