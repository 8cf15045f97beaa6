// Package filter restricts the events a command looks at.
package filter

import (
	"github.com/tracetool/tracetool/internal/common/timeutil"
)

// Filter bounds are inclusive nanosecond timestamps. Where is an SQL predicate that is handed to the event
// store as is; it is never interpreted here.
type Filter struct {
	Start     *int64
	End       *int64
	Where     string
	WorkHours *timeutil.Window
}

// Params is the configured form of a Filter.
type Params struct {
	// Partial date, e.g. "2023-03". The filter starts at its first instant.
	Start string
	// Partial date. The filter ends at its last instant.
	End       string
	Where     string
	WorkHours bool
}

func New(params Params, workHours timeutil.WorkHours) (Filter, error) {
	var f Filter
	if params.Start != "" {
		start, err := timeutil.ParseFloor(params.Start)
		if err != nil {
			return Filter{}, err
		}
		f.Start = &start
	}
	if params.End != "" {
		end, err := timeutil.ParseCeil(params.End)
		if err != nil {
			return Filter{}, err
		}
		f.End = &end
	}
	if params.WorkHours {
		window, err := workHours.Window()
		if err != nil {
			return Filter{}, err
		}
		f.WorkHours = window
	}
	f.Where = params.Where
	return f, nil
}

// Keep reports whether an event at ts passes the time based part of the filter.
func (f Filter) Keep(ts int64) bool {
	if f.Start != nil && ts < *f.Start {
		return false
	}
	if f.End != nil && ts > *f.End {
		return false
	}
	if f.WorkHours != nil && !f.WorkHours.Contains(ts) {
		return false
	}
	return true
}

// Apply returns the elements of s whose timestamp passes Keep, preserving order.
func Apply[E any](f Filter, s []E, timestamp func(E) int64) []E {
	if f.Start == nil && f.End == nil && f.WorkHours == nil {
		return s
	}
	kept := make([]E, 0, len(s))
	for _, e := range s {
		if f.Keep(timestamp(e)) {
			kept = append(kept, e)
		}
	}
	return kept
}
