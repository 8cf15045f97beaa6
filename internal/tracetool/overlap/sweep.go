package overlap

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/exp/slices"

	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
)

type eventKind int

// End sorts before Start so that touching intervals are never credited with overlap.
const (
	endEvent eventKind = iota
	startEvent
)

type event struct {
	ts   int64
	kind eventKind
	id   int
}

// arenaEntry is an accepted interval, addressed by its index in the arena.
type arenaEntry struct {
	key          Key
	end          int64
	overlapNs    uint64
	overlapCount uint32
	ended        bool
}

// activeSet holds ids of open intervals in a min-heap ordered by end time. Intervals are not removed
// when they end; stale entries are popped when they reach the top, or dropped in bulk by compact.
type activeSet struct {
	ids   []int
	arena []arenaEntry
	stale int
}

func (a *activeSet) Len() int { return len(a.ids) }

func (a *activeSet) Less(i, j int) bool {
	x, y := &a.arena[a.ids[i]], &a.arena[a.ids[j]]
	if x.end != y.end {
		return x.end < y.end
	}
	return x.key.Less(y.key)
}

func (a *activeSet) Swap(i, j int) { a.ids[i], a.ids[j] = a.ids[j], a.ids[i] }

func (a *activeSet) Push(x any) { a.ids = append(a.ids, x.(int)) }

func (a *activeSet) Pop() any {
	n := len(a.ids)
	id := a.ids[n-1]
	a.ids = a.ids[:n-1]
	return id
}

// prune pops ended intervals off the top of the heap, and rebuilds the heap once more than half its entries are stale.
func (a *activeSet) prune() {
	for len(a.ids) > 0 && a.arena[a.ids[0]].ended {
		heap.Pop(a)
		a.stale--
	}
	if a.stale > len(a.ids)/2 {
		live := a.ids[:0]
		for _, id := range a.ids {
			if !a.arena[id].ended {
				live = append(live, id)
			}
		}
		a.ids = live
		a.stale = 0
		heap.Init(a)
	}
}

// Compute runs the sweep over intervals, which should be ordered by (Timestamp, Ordinal).
// Intervals with a negative duration, an end that doesn't fit in an int64 or an identity that was already
// seen are skipped and reported in Result.Diagnostics. Zero-duration intervals get an empty record and are
// not part of the timeline.
func Compute(intervals []Interval) Result {
	arena, diagnostics := buildArena(intervals)
	timeline := sweep(arena)

	records := make([]Record, len(arena))
	for i, entry := range arena {
		records[i] = Record{
			Timestamp:    entry.key.Timestamp,
			Ordinal:      entry.key.Ordinal,
			OverlapNs:    entry.overlapNs,
			OverlapCount: entry.overlapCount,
		}
	}
	slices.SortFunc(records, func(a, b Record) bool { return a.Key().Less(b.Key()) })
	return Result{Records: records, Timeline: timeline, Diagnostics: diagnostics}
}

// Accepted filters out the intervals Compute would skip, keeping the first occurrence of each identity.
func Accepted(intervals []Interval) ([]Interval, *multierror.Error) {
	var diagnostics *multierror.Error
	accepted := make([]Interval, 0, len(intervals))
	seen := make(map[Key]bool, len(intervals))
	for _, interval := range intervals {
		if err := validate(interval, seen); err != nil {
			diagnostics = multierror.Append(diagnostics, err)
			continue
		}
		seen[interval.Key()] = true
		accepted = append(accepted, interval)
	}
	return accepted, diagnostics
}

func buildArena(intervals []Interval) ([]arenaEntry, *multierror.Error) {
	accepted, diagnostics := Accepted(intervals)
	return arenaOf(accepted), diagnostics
}

func arenaOf(intervals []Interval) []arenaEntry {
	arena := make([]arenaEntry, len(intervals))
	for i, interval := range intervals {
		arena[i] = arenaEntry{key: interval.Key(), end: interval.Timestamp + interval.Duration}
	}
	return arena
}

func validate(interval Interval, seen map[Key]bool) error {
	switch {
	case interval.Duration < 0:
		return &tracetoolerrors.ErrData{
			Timestamp: interval.Timestamp,
			Ordinal:   interval.Ordinal,
			Message:   fmt.Sprintf("negative duration %d", interval.Duration),
		}
	case interval.Timestamp > 0 && interval.Duration > math.MaxInt64-interval.Timestamp:
		return &tracetoolerrors.ErrData{
			Timestamp: interval.Timestamp,
			Ordinal:   interval.Ordinal,
			Message:   fmt.Sprintf("duration %d overflows the end timestamp", interval.Duration),
		}
	case seen[interval.Key()]:
		return &tracetoolerrors.ErrData{
			Timestamp: interval.Timestamp,
			Ordinal:   interval.Ordinal,
			Message:   "duplicate identity",
		}
	}
	return nil
}

func sweep(arena []arenaEntry) []ActiveCountPoint {
	events := make([]event, 0, 2*len(arena))
	for id, entry := range arena {
		if entry.end == entry.key.Timestamp {
			continue
		}
		events = append(events, event{ts: entry.key.Timestamp, kind: startEvent, id: id}, event{ts: entry.end, kind: endEvent, id: id})
	}
	slices.SortFunc(events, func(a, b event) bool {
		if a.ts != b.ts {
			return a.ts < b.ts
		}
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		return arena[a.id].key.Less(arena[b.id].key)
	})

	active := &activeSet{arena: arena}
	var timeline []ActiveCountPoint
	var count uint32
	for i, e := range events {
		entry := &arena[e.id]
		switch e.kind {
		case startEvent:
			active.prune()
			for _, other := range active.ids {
				otherEntry := &arena[other]
				if otherEntry.ended {
					continue
				}
				overlap := uint64(min(otherEntry.end, entry.end) - e.ts)
				otherEntry.overlapNs += overlap
				otherEntry.overlapCount++
				entry.overlapNs += overlap
				entry.overlapCount++
			}
			heap.Push(active, e.id)
			count++
		case endEvent:
			entry.ended = true
			active.stale++
			count--
		}
		// All events at one instant are applied before the count at that instant is observed.
		if i+1 < len(events) && events[i+1].ts == e.ts {
			continue
		}
		if len(timeline) == 0 || timeline[len(timeline)-1].Count != count {
			timeline = append(timeline, ActiveCountPoint{Timestamp: e.ts, Count: count})
		}
	}
	return timeline
}

func min(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
