package eventsource

// Schema names the tables and columns of the event store.
type Schema struct {
	EventsTable     string `validate:"required"`
	GroupColumn     string `validate:"required"`
	TimestampColumn string `validate:"required"`
	OrdinalColumn   string `validate:"required"`
	DurationColumn  string `validate:"required"`
	// Output tables of the overlap computation. They are replaced on every run.
	OverlapTable     string `validate:"required"`
	ActiveCountTable string `validate:"required"`
	// Maximum number of rows per INSERT statement.
	InsertBatchSize int `validate:"gt=0"`
}

func DefaultSchema() Schema {
	return Schema{
		EventsTable:      "item_view_executor_execute",
		GroupColumn:      "view_id",
		TimestampColumn:  "timestamp",
		OrdinalColumn:    "ordinal",
		DurationColumn:   "wallclock_time_ns",
		OverlapTable:     "item_view_executor_execute_overlap",
		ActiveCountTable: "active_query_count",
		InsertBatchSize:  500,
	}
}

// Columns of the output tables.
const (
	timestampCol    = "timestamp"
	ordinalCol      = "ordinal"
	overlapCol      = "overlap"
	overlapCountCol = "overlap_count"
	countCol        = "count"
)
