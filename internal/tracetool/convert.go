package tracetool

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"

	"github.com/tracetool/tracetool/internal/common/timeutil"
	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
	"github.com/tracetool/tracetool/internal/tracetool/build"
)

const dateLayout = "2006-01-02 15:04:05.999999999 MST"

// ConvertUnit helps writing predicates by hand. A partial date is printed as the nanosecond timestamps of its
// first and last instant, a duration as a number of nanoseconds and a nanosecond timestamp as a UTC date.
// The forms are tried in that order, so a four digit number is a year.
func (a *App) ConvertUnit(value string) error {
	if date, err := timeutil.ParsePartialDate(value); err == nil {
		start := date.Floor()
		end := date.Ceil()
		_, err := fmt.Fprintf(a.Out, "%d - %d\n(%s - %s)\n",
			start.UnixNano(), end.UnixNano(), start.Format(dateLayout), end.Format(dateLayout))
		return errors.WithStack(err)
	}

	if d, err := timeutil.ParseDuration(value); err == nil {
		_, err := fmt.Fprintf(a.Out, "%d nanoseconds\n", d.Nanoseconds())
		return errors.WithStack(err)
	}

	if ts, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil && ts >= 0 {
		_, err := fmt.Fprintln(a.Out, time.Unix(0, ts).UTC().Format(dateLayout))
		return errors.WithStack(err)
	}

	return &tracetoolerrors.ErrInput{Name: "value", Value: value, Message: "not a date, a duration or a nanosecond timestamp"}
}

// Version prints build information (e.g., current git commit) to the app output.
func (a *App) Version() error {
	w := tabwriter.NewWriter(a.Out, 1, 1, 1, ' ', 0)
	fmt.Fprintf(w, "Version:\t%s\n", build.ReleaseVersion)
	fmt.Fprintf(w, "Commit:\t%s\n", build.GitCommit)
	fmt.Fprintf(w, "Go version:\t%s\n", build.GoVersion)
	fmt.Fprintf(w, "Built:\t%s\n", build.BuildTime)
	return errors.WithStack(w.Flush())
}
