package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DayOfWeek is the title-cased weekday name a schedule meets on.
type DayOfWeek string

const (
	Monday    DayOfWeek = "Monday"
	Tuesday   DayOfWeek = "Tuesday"
	Wednesday DayOfWeek = "Wednesday"
	Thursday  DayOfWeek = "Thursday"
	Friday    DayOfWeek = "Friday"
	Saturday  DayOfWeek = "Saturday"
	Sunday    DayOfWeek = "Sunday"
)

var weekdays = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseDayOfWeek accepts a weekday name or its three letter abbreviation in any case.
func ParseDayOfWeek(raw string) (DayOfWeek, error) {
	needle := strings.ToLower(strings.TrimSpace(raw))
	for _, day := range weekdays {
		name := strings.ToLower(string(day))
		if needle == name || (len(needle) == 3 && strings.HasPrefix(name, needle)) {
			return day, nil
		}
	}
	return "", fmt.Errorf("unknown day of week %q", raw)
}

// ScheduleLocation is the reference timezone every stored timestamp is read in.
var ScheduleLocation = time.UTC

// ClockTime is a time of day expressed as minutes since midnight.
type ClockTime int

// ClockTimeOf extracts the wall clock of t in ScheduleLocation, dropping the date.
func ClockTimeOf(t time.Time) ClockTime {
	local := t.In(ScheduleLocation)
	return ClockTime(local.Hour()*60 + local.Minute())
}

// NewClockTime builds a ClockTime from an hour and minute.
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

// String renders the 24h form, e.g. "13:05".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// Display renders the 12h form used in user facing messages, e.g. "1:05 PM".
func (c ClockTime) Display() string {
	hour := c.Hour()
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, c.Minute(), suffix)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// TimeSlot is a weekly recurring interval [Start, End) on a single day.
type TimeSlot struct {
	Day   DayOfWeek
	Start ClockTime
	End   ClockTime
}

// NewTimeSlot normalises stored timestamps into a weekday relative slot.
func NewTimeSlot(day DayOfWeek, start, end time.Time) TimeSlot {
	return TimeSlot{Day: day, Start: ClockTimeOf(start), End: ClockTimeOf(end)}
}

// Overlaps reports whether both slots share a day and intersect. Touching
// endpoints do not overlap, so back to back meetings are allowed.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	if s.Day != other.Day {
		return false
	}
	return s.Start < other.End && s.End > other.Start
}

// DisplayRange renders "10:00 AM - 11:00 AM".
func (s TimeSlot) DisplayRange() string {
	return s.Start.Display() + " - " + s.End.Display()
}

// Schedule is one weekly meeting of a section course.
type Schedule struct {
	ID              int64     `json:"id"`
	SectionCourseID int64     `json:"sectionCourseId"`
	DayOfWeek       DayOfWeek `json:"dayOfWeek"`
	StartTime       ClockTime `json:"startTime"`
	EndTime         ClockTime `json:"endTime"`
	RoomCode        string    `json:"roomCode,omitempty"`
}

// Slot returns the comparable interval of the schedule.
func (s Schedule) Slot() TimeSlot {
	return TimeSlot{Day: s.DayOfWeek, Start: s.StartTime, End: s.EndTime}
}

// ClashReport describes one overlap between the requested section and an
// existing registration. Day and Time describe the requested slot.
type ClashReport struct {
	CourseCode  string    `json:"courseCode"`
	CourseTitle string    `json:"courseTitle"`
	Day         DayOfWeek `json:"day"`
	Time        string    `json:"time"`
}
