package models

// Section is a schedulable offering with a seat capacity in a single term.
type Section struct {
	ID             int64           `db:"id" json:"id"`
	SectionCode    string          `db:"section_code" json:"sectionCode"`
	Capacity       int             `db:"capacity" json:"capacity"`
	TermID         int64           `db:"term_id" json:"termId"`
	Term           *Term           `db:"-" json:"term,omitempty"`
	SectionCourses []SectionCourse `db:"-" json:"sectionCourses"`
}

// SectionCourse binds a course (and optionally a faculty member) to a section.
type SectionCourse struct {
	ID        int64      `db:"id" json:"id"`
	SectionID int64      `db:"section_id" json:"sectionId"`
	CourseID  int64      `db:"course_id" json:"courseId"`
	FacultyID *string    `db:"faculty_id" json:"facultyId,omitempty"`
	Course    *Course    `db:"-" json:"course,omitempty"`
	Schedules []Schedule `db:"-" json:"schedules"`
}

// Schedules flattens the meeting slots of every course attached to the section.
func (s *Section) Schedules() []Schedule {
	if s == nil {
		return nil
	}
	var out []Schedule
	for _, sc := range s.SectionCourses {
		out = append(out, sc.Schedules...)
	}
	return out
}

// PrimaryCourse returns the first attached course, or nil when the section has none.
// Clash reports identify a section by this course only.
func (s *Section) PrimaryCourse() *Course {
	if s == nil || len(s.SectionCourses) == 0 {
		return nil
	}
	return s.SectionCourses[0].Course
}

// SectionAvailability summarises seat usage for a section.
type SectionAvailability struct {
	SectionID      int64 `db:"section_id" json:"sectionId"`
	Capacity       int   `db:"capacity" json:"capacity"`
	Registered     int   `db:"registered" json:"registered"`
	Waitlisted     int   `db:"waitlisted" json:"waitlisted"`
	AvailableSeats int   `db:"-" json:"availableSeats"`
}

// Normalize derives AvailableSeats, never reporting a negative count.
func (a *SectionAvailability) Normalize() {
	a.AvailableSeats = a.Capacity - a.Registered
	if a.AvailableSeats < 0 {
		a.AvailableSeats = 0
	}
}
