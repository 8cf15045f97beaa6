// Package timeutil parses the duration grammar and partial dates accepted on the command line and in
// configuration files, and implements the work-hours window.
package timeutil

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
)

const (
	Day   = 24 * time.Hour
	Week  = 7 * Day
	Month = 30 * Day
	Year  = 365 * Day
)

var durationRegex = regexp.MustCompile(`^\s*(\d+)\s*([A-Za-z]+)\s*$`)

// Short units are case-sensitive ("m" is a minute, "M" a month). Long forms are matched case-insensitively.
var shortUnits = map[string]time.Duration{
	"ns": time.Nanosecond,
	"us": time.Microsecond,
	"ms": time.Millisecond,
	"s":  time.Second,
	"m":  time.Minute,
	"h":  time.Hour,
	"D":  Day,
	"W":  Week,
	"M":  Month,
	"Y":  Year,
}

var longUnits = map[string]time.Duration{
	"nanosecond":  time.Nanosecond,
	"microsecond": time.Microsecond,
	"millisecond": time.Millisecond,
	"second":      time.Second,
	"minute":      time.Minute,
	"hour":        time.Hour,
	"day":         Day,
	"week":        Week,
	"month":       Month,
	"year":        Year,
}

// UnitOf returns the length of a single unit of the duration grammar, e.g. "ms" or "days".
func UnitOf(unit string) (time.Duration, bool) {
	if d, ok := shortUnits[unit]; ok {
		return d, true
	}
	long := strings.TrimSuffix(strings.ToLower(unit), "s")
	d, ok := longUnits[long]
	return d, ok
}

var unitOrder = []string{"ns", "us", "ms", "s", "m", "h", "D", "W", "M", "Y"}

// UnitName returns the short name of d if d is exactly one unit, e.g. "ms" for time.Millisecond,
// and d formatted by time.Duration otherwise.
func UnitName(d time.Duration) string {
	for _, name := range unitOrder {
		if shortUnits[name] == d {
			return name
		}
	}
	return d.String()
}

// ParseDuration parses an integer quantity followed by a unit, e.g. "15m", "1 D" or "2 weeks".
// Calendar units have idealized lengths: a day is 86400s, a month 30 days and a year 365 days.
func ParseDuration(s string) (time.Duration, error) {
	m := durationRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, &tracetoolerrors.ErrInput{Name: "duration", Value: s, Message: "expected an integer followed by a unit"}
	}
	quantity, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, &tracetoolerrors.ErrInput{Name: "duration", Value: s, Message: err.Error()}
	}
	unit, ok := UnitOf(m[2])
	if !ok {
		return 0, &tracetoolerrors.ErrInput{Name: "duration", Value: s, Message: fmt.Sprintf("unknown unit %q", m[2])}
	}
	if quantity > math.MaxInt64/int64(unit) {
		return 0, &tracetoolerrors.ErrInput{Name: "duration", Value: s, Message: "too large to be represented in nanoseconds"}
	}
	return time.Duration(quantity) * unit, nil
}
