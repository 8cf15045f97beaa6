// Package report renders command results as delimited text or as a table for the terminal.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
)

type Format string

const (
	CSV   Format = "csv"
	TSV   Format = "tsv"
	Table Format = "table"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case CSV, TSV, Table:
		return f, nil
	}
	return "", &tracetoolerrors.ErrInput{Name: "output.format", Value: s, Message: "must be csv, tsv or table"}
}

// Rows is a header and the cells of each row, already formatted.
type Rows struct {
	Header []string
	Cells  [][]string
}

func Write(w io.Writer, format Format, rows Rows) error {
	switch format {
	case Table:
		table := tablewriter.NewWriter(w)
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetHeader(rows.Header)
		table.AppendBulk(rows.Cells)
		table.Render()
		plural := "s"
		if len(rows.Cells) == 1 {
			plural = ""
		}
		_, err := fmt.Fprintf(w, "(%d row%s)\n", len(rows.Cells), plural)
		return errors.WithStack(err)
	case CSV, TSV, "":
		csvWriter := csv.NewWriter(w)
		if format == TSV {
			csvWriter.Comma = '\t'
		}
		if err := csvWriter.Write(rows.Header); err != nil {
			return errors.WithStack(err)
		}
		return errors.WithStack(csvWriter.WriteAll(rows.Cells))
	default:
		return &tracetoolerrors.ErrInput{Name: "output.format", Value: format}
	}
}

// FormatFloat renders v in the shortest form that parses back to v. NaN, used for absent values, is empty.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func FormatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
