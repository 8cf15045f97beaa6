package report

import (
	"github.com/tracetool/tracetool/internal/tracetool/aggregation"
	"github.com/tracetool/tracetool/internal/tracetool/correlation"
	"github.com/tracetool/tracetool/internal/tracetool/statistics"
)

// StatisticsRows has one row per group. groupLabel names the group column, e.g. "view ID".
func StatisticsRows(groupLabel string, rows []statistics.Row) Rows {
	result := Rows{
		Header: []string{groupLabel, "count", "min", "max", "mean", "median", "Q1", "Q3", "IQR", "standard deviation"},
		Cells:  make([][]string, len(rows)),
	}
	for i, row := range rows {
		result.Cells[i] = []string{
			FormatInt(row.GroupId),
			FormatInt(int64(row.Count)),
			FormatFloat(row.Min),
			FormatFloat(row.Max),
			FormatFloat(row.Mean),
			FormatFloat(row.Median),
			FormatFloat(row.Q1),
			FormatFloat(row.Q3),
			FormatFloat(row.IQR),
			FormatFloat(row.Stddev),
		}
	}
	return result
}

// CorrelationRows has one row per group, in the order of results. unitLabel is the unit of the Q3 column, e.g. "ms".
func CorrelationRows(groupLabel string, unitLabel string, results []correlation.Result) Rows {
	result := Rows{
		Header: []string{groupLabel, "sample count", "Q3 (" + unitLabel + ")", "variance ratio"},
		Cells:  make([][]string, len(results)),
	}
	for i, r := range results {
		result.Cells[i] = []string{
			FormatInt(r.GroupId),
			FormatInt(int64(r.SampleCount)),
			FormatFloat(r.Q3ExecTime),
			FormatFloat(r.VarianceRatio),
		}
	}
	return result
}

// SeriesPoint is a point of a named, segmented, aggregated series.
type SeriesPoint struct {
	Series  string
	Segment int
	Mode    aggregation.Mode
	Point   aggregation.Point
}

func SeriesRows(points []SeriesPoint) Rows {
	result := Rows{
		Header: []string{"series", "segment", "bucket start", "mode", "value"},
		Cells:  make([][]string, len(points)),
	}
	for i, p := range points {
		result.Cells[i] = []string{
			p.Series,
			FormatInt(int64(p.Segment)),
			FormatInt(p.Point.BucketStart),
			string(p.Mode),
			FormatFloat(p.Point.Value),
		}
	}
	return result
}
