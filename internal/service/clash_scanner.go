package service

import "github.com/noah-isme/course-registration-api/internal/models"

const (
	unknownCourseCode  = "Unknown"
	unknownCourseTitle = "Unknown Course"
)

// FindTimeClashes compares the requested section's meetings against every
// meeting of the student's existing registrations. One report is produced per
// overlapping pair. The reported course is the first course of the existing
// section, and day and time describe the requested meeting.
func FindTimeClashes(target []models.Schedule, existing []models.RegistrationDetail) []models.ClashReport {
	clashes := make([]models.ClashReport, 0)
	for i := range existing {
		section := &existing[i].Section
		code, title := unknownCourseCode, unknownCourseTitle
		if course := section.PrimaryCourse(); course != nil {
			code, title = course.Code, course.Title
		}

		for _, held := range section.Schedules() {
			heldSlot := held.Slot()
			for _, wanted := range target {
				wantedSlot := wanted.Slot()
				if !wantedSlot.Overlaps(heldSlot) {
					continue
				}
				clashes = append(clashes, models.ClashReport{
					CourseCode:  code,
					CourseTitle: title,
					Day:         wantedSlot.Day,
					Time:        wantedSlot.DisplayRange(),
				})
			}
		}
	}
	return clashes
}
