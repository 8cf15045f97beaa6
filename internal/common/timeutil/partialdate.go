package timeutil

import (
	"regexp"
	"strconv"
	"time"

	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
)

var partialDateRegex = regexp.MustCompile(`^(\d{4})(?:-(\d{2})(?:-(\d{2})(?:\s(\d{2})(?::(\d{2})(?::(\d{2}))?)?)?)?)?$`)

// PartialDate is a date of the form YYYY[-MM[-DD[ HH[:MM[:SS]]]]] in UTC. It denotes the whole period
// spanned by its least significant field, e.g. "2023-02" is all of February 2023.
type PartialDate struct {
	fields    [6]int
	precision int
}

func ParsePartialDate(s string) (PartialDate, error) {
	m := partialDateRegex.FindStringSubmatch(s)
	if m == nil {
		return PartialDate{}, &tracetoolerrors.ErrInput{Name: "date", Value: s, Message: "expected YYYY[-MM[-DD[ HH[:MM[:SS]]]]]"}
	}
	d := PartialDate{fields: [6]int{0, 1, 1, 0, 0, 0}}
	for i := 1; i < len(m); i++ {
		if m[i] == "" {
			break
		}
		v, err := strconv.Atoi(m[i])
		if err != nil {
			return PartialDate{}, &tracetoolerrors.ErrInput{Name: "date", Value: s, Message: err.Error()}
		}
		d.fields[i-1] = v
		d.precision = i
	}
	f := d.fields
	t := time.Date(f[0], time.Month(f[1]), f[2], f[3], f[4], f[5], 0, time.UTC)
	// time.Date normalises out of range values, so a round trip detects e.g. 2023-02-30 or hour 24.
	if t.Year() != f[0] || int(t.Month()) != f[1] || t.Day() != f[2] || t.Hour() != f[3] || t.Minute() != f[4] || t.Second() != f[5] {
		return PartialDate{}, &tracetoolerrors.ErrInput{Name: "date", Value: s, Message: "no such date"}
	}
	return d, nil
}

// Floor returns the first instant of the period.
func (d PartialDate) Floor() time.Time {
	f := d.fields
	return time.Date(f[0], time.Month(f[1]), f[2], f[3], f[4], f[5], 0, time.UTC)
}

// Ceil returns the last nanosecond of the period.
func (d PartialDate) Ceil() time.Time {
	floor := d.Floor()
	var next time.Time
	switch d.precision {
	case 1:
		next = floor.AddDate(1, 0, 0)
	case 2:
		next = floor.AddDate(0, 1, 0)
	case 3:
		next = floor.AddDate(0, 0, 1)
	case 4:
		next = floor.Add(time.Hour)
	case 5:
		next = floor.Add(time.Minute)
	default:
		next = floor.Add(time.Second)
	}
	return next.Add(-time.Nanosecond)
}

// ParseFloor parses s and returns the first nanosecond it denotes, as nanoseconds since the epoch.
func ParseFloor(s string) (int64, error) {
	d, err := ParsePartialDate(s)
	if err != nil {
		return 0, err
	}
	return d.Floor().UnixNano(), nil
}

// ParseCeil parses s and returns the last nanosecond it denotes, as nanoseconds since the epoch.
func ParseCeil(s string) (int64, error) {
	d, err := ParsePartialDate(s)
	if err != nil {
		return 0, err
	}
	return d.Ceil().UnixNano(), nil
}
