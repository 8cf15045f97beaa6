package eventsource

import (
	"testing"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracetool/tracetool/internal/common/database"
	"github.com/tracetool/tracetool/internal/common/tracetoolcontext"
	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
	"github.com/tracetool/tracetool/internal/tracetool/correlation"
	"github.com/tracetool/tracetool/internal/tracetool/filter"
	"github.com/tracetool/tracetool/internal/tracetool/overlap"
)

var schema = []string{
	`CREATE TABLE item_view_executor_execute (
		view_id INTEGER,
		timestamp INTEGER NOT NULL,
		ordinal INTEGER NOT NULL,
		wallclock_time_ns INTEGER NOT NULL,
		host TEXT,
		PRIMARY KEY (timestamp, ordinal)
	)`,
	`INSERT INTO item_view_executor_execute VALUES
		(1, 100, 0, 50, 'a'),
		(2, 100, 1, 20, 'b'),
		(NULL, 120, 0, 999, 'a'),
		(1, 130, 0, 40, 'b'),
		(3, 200, 0, 10, 'a')`,
}

func withRepository(t *testing.T, action func(r *Repository, db *goqu.Database)) {
	err := database.WithTestDb(schema, func(db *goqu.Database) error {
		action(New(db, DefaultSchema()), db)
		return nil
	})
	require.NoError(t, err)
}

func int64Ptr(v int64) *int64 { return &v }

func TestReadIntervals(t *testing.T) {
	withRepository(t, func(r *Repository, _ *goqu.Database) {
		intervals, err := r.ReadIntervals(tracetoolcontext.Background(), filter.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []overlap.Interval{
			{GroupId: 1, Timestamp: 100, Ordinal: 0, Duration: 50},
			{GroupId: 2, Timestamp: 100, Ordinal: 1, Duration: 20},
			{GroupId: 1, Timestamp: 130, Ordinal: 0, Duration: 40},
			{GroupId: 3, Timestamp: 200, Ordinal: 0, Duration: 10},
		}, intervals)
	})
}

func TestReadIntervals_Filtered(t *testing.T) {
	withRepository(t, func(r *Repository, _ *goqu.Database) {
		f := filter.Filter{Start: int64Ptr(100), End: int64Ptr(130), Where: "host = 'b'"}
		intervals, err := r.ReadIntervals(tracetoolcontext.Background(), f)
		require.NoError(t, err)
		assert.Equal(t, []overlap.Interval{
			{GroupId: 2, Timestamp: 100, Ordinal: 1, Duration: 20},
			{GroupId: 1, Timestamp: 130, Ordinal: 0, Duration: 40},
		}, intervals)
	})
}

func TestReadIntervals_MissingTable(t *testing.T) {
	err := database.WithTestDb(nil, func(db *goqu.Database) error {
		_, err := New(db, DefaultSchema()).ReadIntervals(tracetoolcontext.Background(), filter.Filter{})
		assert.True(t, tracetoolerrors.IsStore(err))
		return nil
	})
	require.NoError(t, err)
}

func TestReadSeries(t *testing.T) {
	withRepository(t, func(r *Repository, _ *goqu.Database) {
		samples, err := r.ReadSeries(tracetoolcontext.Background(), "item_view_executor_execute", "wallclock_time_ns", filter.Filter{Start: int64Ptr(120)})
		require.NoError(t, err)
		require.Len(t, samples, 3)
		assert.Equal(t, int64(120), samples[0].Timestamp)
		assert.Equal(t, 999.0, samples[0].Value)
		assert.Equal(t, int64(200), samples[2].Timestamp)
	})
}

func TestReadGroupedValues(t *testing.T) {
	withRepository(t, func(r *Repository, _ *goqu.Database) {
		groups, err := r.ReadGroupedValues(tracetoolcontext.Background(), "item_view_executor_execute", "view_id", "wallclock_time_ns", filter.Filter{})
		require.NoError(t, err)
		assert.Equal(t, map[int64][]float64{1: {50, 40}, 2: {20}, 3: {10}}, groups)
	})
}

func TestReplaceOverlapTables(t *testing.T) {
	withRepository(t, func(r *Repository, db *goqu.Database) {
		ctx := tracetoolcontext.Background()
		intervals, err := r.ReadIntervals(ctx, filter.Filter{})
		require.NoError(t, err)
		result := overlap.Compute(intervals)
		require.NoError(t, r.ReplaceOverlapTables(ctx, result.Records, result.Timeline))

		var records []overlap.Record
		require.NoError(t, db.From("item_view_executor_execute_overlap").Order(goqu.C("timestamp").Asc(), goqu.C("ordinal").Asc()).ScanStructs(&records))
		assert.Equal(t, result.Records, records)

		var timeline []overlap.ActiveCountPoint
		require.NoError(t, db.From("active_query_count").Order(goqu.C("timestamp").Asc()).ScanStructs(&timeline))
		assert.Equal(t, result.Timeline, timeline)

		pairs, err := r.ReadOverlapPairs(ctx, filter.Filter{})
		require.NoError(t, err)
		assert.Equal(t, map[int64][]correlation.Pair{
			1: {
				{Timestamp: 100, Ordinal: 0, ExecTime: 50, Overlap: 40},
				{Timestamp: 130, Ordinal: 0, ExecTime: 40, Overlap: 20},
			},
			2: {{Timestamp: 100, Ordinal: 1, ExecTime: 20, Overlap: 20}},
			3: {{Timestamp: 200, Ordinal: 0, ExecTime: 10, Overlap: 0}},
		}, pairs)

		// A second run replaces the first.
		require.NoError(t, r.ReplaceOverlapTables(ctx, result.Records[:1], nil))
		var count int64
		_, err = db.From("item_view_executor_execute_overlap").Select(goqu.COUNT("*")).ScanVal(&count)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestReplaceOverlapTables_SmallBatches(t *testing.T) {
	withRepository(t, func(r *Repository, db *goqu.Database) {
		r.schema.InsertBatchSize = 2
		records := make([]overlap.Record, 7)
		for i := range records {
			records[i] = overlap.Record{Timestamp: int64(i), OverlapNs: uint64(i * 10), OverlapCount: 1}
		}
		require.NoError(t, r.ReplaceOverlapTables(tracetoolcontext.Background(), records, []overlap.ActiveCountPoint{{Timestamp: 0, Count: 1}}))

		var actual []overlap.Record
		require.NoError(t, db.From("item_view_executor_execute_overlap").Order(goqu.C("timestamp").Asc()).ScanStructs(&actual))
		assert.Equal(t, records, actual)
	})
}

func TestReplaceOverlapTables_CancelledLeavesPreviousTables(t *testing.T) {
	withRepository(t, func(r *Repository, db *goqu.Database) {
		previous := []overlap.Record{{Timestamp: 1, OverlapNs: 5, OverlapCount: 1}}
		require.NoError(t, r.ReplaceOverlapTables(tracetoolcontext.Background(), previous, nil))

		ctx, cancel := tracetoolcontext.WithCancel(tracetoolcontext.Background())
		cancel()
		err := r.ReplaceOverlapTables(ctx, []overlap.Record{{Timestamp: 2}}, nil)
		assert.True(t, tracetoolerrors.IsStore(err))

		var actual []overlap.Record
		require.NoError(t, db.From("item_view_executor_execute_overlap").ScanStructs(&actual))
		assert.Equal(t, previous, actual)
	})
}

func TestReplaceOverlapTables_FailedInsertRollsBack(t *testing.T) {
	withRepository(t, func(r *Repository, db *goqu.Database) {
		previous := []overlap.Record{{Timestamp: 1, OverlapNs: 5, OverlapCount: 1}}
		require.NoError(t, r.ReplaceOverlapTables(tracetoolcontext.Background(), previous, nil))

		duplicates := []overlap.Record{{Timestamp: 2}, {Timestamp: 2}}
		err := r.ReplaceOverlapTables(tracetoolcontext.Background(), duplicates, nil)
		assert.True(t, tracetoolerrors.IsStore(err))

		var actual []overlap.Record
		require.NoError(t, db.From("item_view_executor_execute_overlap").ScanStructs(&actual))
		assert.Equal(t, previous, actual)
	})
}

func TestValidatePredicate(t *testing.T) {
	withRepository(t, func(r *Repository, _ *goqu.Database) {
		ctx := tracetoolcontext.Background()
		assert.NoError(t, r.ValidatePredicate(ctx, "item_view_executor_execute", ""))
		assert.NoError(t, r.ValidatePredicate(ctx, "item_view_executor_execute", "host = 'a' AND view_id > 1"))

		err := r.ValidatePredicate(ctx, "item_view_executor_execute", "no_such_column = 1")
		assert.True(t, tracetoolerrors.IsInput(err))

		err = r.ValidatePredicate(ctx, "no_such_table", "host = 'a'")
		assert.True(t, tracetoolerrors.IsStore(err))
	})
}
