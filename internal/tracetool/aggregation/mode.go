package aggregation

import (
	"strings"

	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
)

// Mode is the statistic computed over the values in each bucket.
type Mode string

const (
	Mean   Mode = "mean"
	Median Mode = "median"
	Min    Mode = "min"
	Max    Mode = "max"
	Count  Mode = "count"
	Sum    Mode = "sum"
	Stddev Mode = "stddev"
	Q1     Mode = "q1"
	Q3     Mode = "q3"
	IQR    Mode = "iqr"

	// Quartiles is shorthand for Q1 and Q3.
	Quartiles = "quartiles"
)

var modes = map[Mode]bool{Mean: true, Median: true, Min: true, Max: true, Count: true, Sum: true, Stddev: true, Q1: true, Q3: true, IQR: true}

// ParseModes parses a comma separated list of modes, expanding "quartiles" into q1 and q3.
// Duplicates are dropped, keeping the first occurrence.
func ParseModes(s string) ([]Mode, error) {
	return ParseModeList(strings.Split(s, ","))
}

func ParseModeList(names []string) ([]Mode, error) {
	var result []Mode
	seen := make(map[Mode]bool)
	add := func(mode Mode) {
		if !seen[mode] {
			seen[mode] = true
			result = append(result, mode)
		}
	}
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		switch {
		case name == Quartiles:
			add(Q1)
			add(Q3)
		case modes[Mode(name)]:
			add(Mode(name))
		default:
			return nil, &tracetoolerrors.ErrInput{Name: "aggregation.mode", Value: name, Message: "unknown aggregation mode"}
		}
	}
	if len(result) == 0 {
		return nil, &tracetoolerrors.ErrInput{Name: "aggregation.mode", Value: "", Message: "at least one mode is required"}
	}
	return result, nil
}
