package eventsource

import (
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"

	"github.com/tracetool/tracetool/internal/common/slices"
	"github.com/tracetool/tracetool/internal/common/tracetoolcontext"
	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
	"github.com/tracetool/tracetool/internal/tracetool/overlap"
)

// ReplaceOverlapTables drops and recreates the overlap and active count tables and fills them with records
// and timeline, all in one transaction. If anything fails, or ctx is cancelled before the commit, the
// previous tables are left untouched.
func (r *Repository) ReplaceOverlapTables(ctx *tracetoolcontext.Context, records []overlap.Record, timeline []overlap.ActiveCountPoint) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return tracetoolerrors.NewStoreError("begin transaction", err)
	}
	err = tx.Wrap(func() error {
		statements := []string{
			fmt.Sprintf("DROP TABLE IF EXISTS %s", r.quote(r.schema.OverlapTable)),
			fmt.Sprintf("DROP TABLE IF EXISTS %s", r.quote(r.schema.ActiveCountTable)),
			fmt.Sprintf(`CREATE TABLE %s (
				%s BIGINT NOT NULL,
				%s BIGINT NOT NULL,
				%s BIGINT NOT NULL,
				%s BIGINT NOT NULL,
				PRIMARY KEY (%s, %s)
			)`,
				r.quote(r.schema.OverlapTable),
				r.quote(timestampCol), r.quote(ordinalCol), r.quote(overlapCol), r.quote(overlapCountCol),
				r.quote(timestampCol), r.quote(ordinalCol),
			),
			fmt.Sprintf(`CREATE TABLE %s (
				%s BIGINT NOT NULL,
				%s BIGINT NOT NULL,
				PRIMARY KEY (%s)
			)`,
				r.quote(r.schema.ActiveCountTable),
				r.quote(timestampCol), r.quote(countCol),
				r.quote(timestampCol),
			),
		}
		for _, statement := range statements {
			if _, err := tx.ExecContext(ctx, statement); err != nil {
				return err
			}
		}
		for _, batch := range slices.Batches(records, r.schema.InsertBatchSize) {
			if _, err := tx.Insert(goqu.T(r.schema.OverlapTable)).Rows(batch).Executor().ExecContext(ctx); err != nil {
				return err
			}
		}
		for _, batch := range slices.Batches(timeline, r.schema.InsertBatchSize) {
			if _, err := tx.Insert(goqu.T(r.schema.ActiveCountTable)).Rows(batch).Executor().ExecContext(ctx); err != nil {
				return err
			}
		}
		// A cancellation that arrived while the last batch was written must not be committed.
		return ctx.Err()
	})
	if err != nil {
		return tracetoolerrors.NewStoreError("replace overlap tables", err)
	}
	ctx.Log.Infof("Wrote %d rows to %s and %d rows to %s", len(records), r.schema.OverlapTable, len(timeline), r.schema.ActiveCountTable)
	return nil
}

// quote renders name as a double quoted identifier, which both sqlite and postgres accept.
func (r *Repository) quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
