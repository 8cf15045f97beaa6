// Package eventsource reads events from, and writes overlap results back to, the relational event store.
package eventsource

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/pkg/errors"

	"github.com/tracetool/tracetool/internal/common/database"
	"github.com/tracetool/tracetool/internal/common/slices"
	"github.com/tracetool/tracetool/internal/common/tracetoolcontext"
	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
	"github.com/tracetool/tracetool/internal/tracetool/aggregation"
	"github.com/tracetool/tracetool/internal/tracetool/correlation"
	"github.com/tracetool/tracetool/internal/tracetool/filter"
	"github.com/tracetool/tracetool/internal/tracetool/overlap"
)

type Repository struct {
	db     *goqu.Database
	schema Schema
}

func New(db *goqu.Database, schema Schema) *Repository {
	return &Repository{db: db, schema: schema}
}

type intervalRow struct {
	GroupId   int64 `db:"group_id"`
	Timestamp int64 `db:"timestamp"`
	Ordinal   int64 `db:"ordinal"`
	Duration  int64 `db:"duration"`
}

type groupedValueRow struct {
	GroupId   int64   `db:"group_id"`
	Timestamp int64   `db:"timestamp"`
	Value     float64 `db:"value"`
}

type pairRow struct {
	GroupId   int64   `db:"group_id"`
	Timestamp int64   `db:"timestamp"`
	Ordinal   int64   `db:"ordinal"`
	ExecTime  float64 `db:"exec_time"`
	Overlap   float64 `db:"overlap"`
}

// criteria turns the filter into conditions on the timestamp column ts. The where predicate is added verbatim.
func criteria(f filter.Filter, ts exp.IdentifierExpression) []exp.Expression {
	var conditions []exp.Expression
	if f.Start != nil {
		conditions = append(conditions, ts.Gte(*f.Start))
	}
	if f.End != nil {
		conditions = append(conditions, ts.Lte(*f.End))
	}
	if f.Where != "" {
		conditions = append(conditions, goqu.L("("+f.Where+")"))
	}
	return conditions
}

// ReadIntervals returns the events of tracked groups, i.e. with a non-null group, ordered by identity.
func (r *Repository) ReadIntervals(ctx *tracetoolcontext.Context, f filter.Filter) ([]overlap.Interval, error) {
	events := goqu.T(r.schema.EventsTable)
	ts := events.Col(r.schema.TimestampColumn)
	ds := r.db.From(events).
		Select(
			events.Col(r.schema.GroupColumn).As("group_id"),
			ts.As("timestamp"),
			events.Col(r.schema.OrdinalColumn).As("ordinal"),
			events.Col(r.schema.DurationColumn).As("duration"),
		).
		Where(append(criteria(f, ts), events.Col(r.schema.GroupColumn).IsNotNull())...).
		Order(ts.Asc(), events.Col(r.schema.OrdinalColumn).Asc())
	r.logQuery(ctx, ds)

	var rows []intervalRow
	if err := ds.Prepared(true).ScanStructsContext(ctx, &rows); err != nil {
		return nil, tracetoolerrors.NewStoreError("read intervals", err)
	}
	intervals := make([]overlap.Interval, 0, len(rows))
	for _, row := range rows {
		intervals = append(intervals, overlap.Interval{
			GroupId:   row.GroupId,
			Timestamp: row.Timestamp,
			Ordinal:   uint32(row.Ordinal),
			Duration:  row.Duration,
		})
	}
	return filter.Apply(f, intervals, func(i overlap.Interval) int64 { return i.Timestamp }), nil
}

// ReadSeries returns (timestamp, value) samples of column in table, ordered by timestamp.
func (r *Repository) ReadSeries(ctx *tracetoolcontext.Context, table string, column string, f filter.Filter) ([]aggregation.Sample, error) {
	t := goqu.T(table)
	ts := t.Col(r.schema.TimestampColumn)
	ds := r.db.From(t).
		Select(ts.As("timestamp"), t.Col(column).As("value")).
		Where(append(criteria(f, ts), t.Col(column).IsNotNull())...).
		Order(ts.Asc())
	r.logQuery(ctx, ds)

	var samples []aggregation.Sample
	if err := ds.Prepared(true).ScanStructsContext(ctx, &samples); err != nil {
		return nil, tracetoolerrors.NewStoreError(fmt.Sprintf("read series %s.%s", table, column), err)
	}
	return filter.Apply(f, samples, func(s aggregation.Sample) int64 { return s.Timestamp }), nil
}

// ReadGroupedValues returns the non-null values of valueColumn keyed by the non-null groupColumn. Within a group
// values are in timestamp order.
func (r *Repository) ReadGroupedValues(ctx *tracetoolcontext.Context, table string, groupColumn string, valueColumn string, f filter.Filter) (map[int64][]float64, error) {
	t := goqu.T(table)
	ts := t.Col(r.schema.TimestampColumn)
	ds := r.db.From(t).
		Select(t.Col(groupColumn).As("group_id"), ts.As("timestamp"), t.Col(valueColumn).As("value")).
		Where(append(criteria(f, ts), t.Col(groupColumn).IsNotNull(), t.Col(valueColumn).IsNotNull())...).
		Order(ts.Asc())
	r.logQuery(ctx, ds)

	var rows []groupedValueRow
	if err := ds.Prepared(true).ScanStructsContext(ctx, &rows); err != nil {
		return nil, tracetoolerrors.NewStoreError(fmt.Sprintf("read %s.%s by %s", table, valueColumn, groupColumn), err)
	}
	rows = filter.Apply(f, rows, func(row groupedValueRow) int64 { return row.Timestamp })
	return slices.GroupBy(
		rows,
		func(row groupedValueRow) int64 { return row.GroupId },
		func(row groupedValueRow) float64 { return row.Value },
	), nil
}

// ReadOverlapPairs joins tracked events with the overlap table and returns (execution time, overlap) pairs by group.
// The where predicate may need to qualify columns with the alias "e" for events or "o" for overlap.
func (r *Repository) ReadOverlapPairs(ctx *tracetoolcontext.Context, f filter.Filter) (map[int64][]correlation.Pair, error) {
	e := goqu.T(r.schema.EventsTable).As("e")
	o := goqu.T(r.schema.OverlapTable).As("o")
	ec := func(col string) exp.IdentifierExpression { return goqu.T("e").Col(col) }
	oc := func(col string) exp.IdentifierExpression { return goqu.T("o").Col(col) }
	ts := ec(r.schema.TimestampColumn)
	ds := r.db.From(e).
		InnerJoin(o, goqu.On(
			ts.Eq(oc(timestampCol)),
			ec(r.schema.OrdinalColumn).Eq(oc(ordinalCol)),
		)).
		Select(
			ec(r.schema.GroupColumn).As("group_id"),
			ts.As("timestamp"),
			ec(r.schema.OrdinalColumn).As("ordinal"),
			ec(r.schema.DurationColumn).As("exec_time"),
			oc(overlapCol).As("overlap"),
		).
		Where(append(criteria(f, ts), ec(r.schema.GroupColumn).IsNotNull())...).
		Order(ts.Asc(), ec(r.schema.OrdinalColumn).Asc())
	r.logQuery(ctx, ds)

	var rows []pairRow
	if err := ds.Prepared(true).ScanStructsContext(ctx, &rows); err != nil {
		if database.IsUndefinedTable(err) {
			return nil, tracetoolerrors.NewStoreError(fmt.Sprintf("read %s, which compute-overlap creates", r.schema.OverlapTable), err)
		}
		return nil, tracetoolerrors.NewStoreError("read overlap samples", err)
	}
	rows = filter.Apply(f, rows, func(row pairRow) int64 { return row.Timestamp })
	return slices.GroupBy(
		rows,
		func(row pairRow) int64 { return row.GroupId },
		func(row pairRow) correlation.Pair {
			return correlation.Pair{Timestamp: row.Timestamp, Ordinal: uint32(row.Ordinal), ExecTime: row.ExecTime, Overlap: row.Overlap}
		},
	), nil
}

// ValidatePredicate checks that the store accepts where as a condition on table. A missing table is an ErrStore,
// a predicate the store rejects an ErrInput.
func (r *Repository) ValidatePredicate(ctx *tracetoolcontext.Context, table string, where string) error {
	if where == "" {
		return nil
	}
	empty := r.db.From(goqu.T(table)).Select(goqu.L("1")).Where(goqu.L("1 = 0"))
	var ones []int64
	if err := empty.ScanValsContext(ctx, &ones); err != nil {
		return tracetoolerrors.NewStoreError(fmt.Sprintf("read %s", table), err)
	}
	if err := empty.Where(goqu.L("(" + where + ")")).ScanValsContext(ctx, &ones); err != nil {
		if database.IsConnectionError(err) || ctx.Err() != nil {
			return tracetoolerrors.NewStoreError("validate predicate", err)
		}
		return errors.WithStack(&tracetoolerrors.ErrInput{Name: "filter.where", Value: where, Message: err.Error()})
	}
	return nil
}

func (r *Repository) logQuery(ctx *tracetoolcontext.Context, ds *goqu.SelectDataset) {
	sql, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		ctx.Log.Debugf("could not render query: %v", err)
		return
	}
	ctx.Log.Debugf("Executing query: %s %v", sql, args)
}
