package timeutil

import (
	"strings"
	"time"

	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
)

// WorkHours is a recurring local business-hours window. A timestamp is inside the window if its
// local hour is in [StartHour, EndHour) and it falls on one of Weekdays.
type WorkHours struct {
	StartHour int
	EndHour   int
	TimeZone  string
	Weekdays  []time.Weekday
}

func DefaultWorkHours() WorkHours {
	return WorkHours{
		StartHour: 8,
		EndHour:   17,
		TimeZone:  "Local",
		Weekdays:  []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
	}
}

// Window is a WorkHours with its time zone resolved.
type Window struct {
	startHour int
	endHour   int
	location  *time.Location
	weekdays  [7]bool
}

func (w WorkHours) Window() (*Window, error) {
	if w.StartHour < 0 || w.StartHour > 23 {
		return nil, &tracetoolerrors.ErrInput{Name: "workHours.startHour", Value: w.StartHour, Message: "must be in [0, 23]"}
	}
	if w.EndHour <= w.StartHour || w.EndHour > 24 {
		return nil, &tracetoolerrors.ErrInput{Name: "workHours.endHour", Value: w.EndHour, Message: "must be in (startHour, 24]"}
	}
	location, err := time.LoadLocation(w.TimeZone)
	if err != nil {
		return nil, &tracetoolerrors.ErrInput{Name: "workHours.timeZone", Value: w.TimeZone, Message: err.Error()}
	}
	window := &Window{startHour: w.StartHour, endHour: w.EndHour, location: location}
	for _, day := range w.Weekdays {
		window.weekdays[day] = true
	}
	return window, nil
}

// Contains reports whether the nanosecond timestamp ts falls inside the window.
func (w *Window) Contains(ts int64) bool {
	t := time.Unix(0, ts).In(w.location)
	hour := t.Hour()
	return w.weekdays[t.Weekday()] && hour >= w.startHour && hour < w.endHour
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekday accepts English weekday names, full or abbreviated to three letters, in any case.
func ParseWeekday(s string) (time.Weekday, error) {
	day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, &tracetoolerrors.ErrInput{Name: "workHours.weekdays", Value: s, Message: "unknown weekday"}
	}
	return day, nil
}
