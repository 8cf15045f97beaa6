// Package overlap computes, for a set of timed intervals, how long each one ran concurrently with the others,
// and the number of intervals active at every instant.
package overlap

import (
	"github.com/hashicorp/go-multierror"
)

// Key is the unique identity of an event in the event store.
type Key struct {
	Timestamp int64
	Ordinal   uint32
}

func (k Key) Less(other Key) bool {
	if k.Timestamp != other.Timestamp {
		return k.Timestamp < other.Timestamp
	}
	return k.Ordinal < other.Ordinal
}

// Interval is an event viewed as the half-open range [Timestamp, Timestamp+Duration).
type Interval struct {
	GroupId   int64
	Timestamp int64
	Ordinal   uint32
	Duration  int64
}

func (i Interval) Key() Key {
	return Key{Timestamp: i.Timestamp, Ordinal: i.Ordinal}
}

// Record is the overlap accumulated by one interval. OverlapNs sums, over every other interval it overlapped,
// the length of the shared range.
type Record struct {
	Timestamp    int64  `db:"timestamp"`
	Ordinal      uint32 `db:"ordinal"`
	OverlapNs    uint64 `db:"overlap"`
	OverlapCount uint32 `db:"overlap_count"`
}

func (r Record) Key() Key {
	return Key{Timestamp: r.Timestamp, Ordinal: r.Ordinal}
}

// ActiveCountPoint is a step of the active count timeline: from Timestamp until the next point, Count intervals are open.
type ActiveCountPoint struct {
	Timestamp int64  `db:"timestamp"`
	Count     uint32 `db:"count"`
}

type Result struct {
	// One record per accepted interval, ordered by identity.
	Records []Record
	// Ordered by timestamp, no two consecutive points have the same count.
	Timeline []ActiveCountPoint
	// One ErrData per skipped interval.
	Diagnostics *multierror.Error
}
