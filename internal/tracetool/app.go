package tracetool

import (
	"io"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tracetool/tracetool/internal/common/database"
	"github.com/tracetool/tracetool/internal/common/logging"
	"github.com/tracetool/tracetool/internal/common/metrics"
	"github.com/tracetool/tracetool/internal/common/tracetoolcontext"
	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
	"github.com/tracetool/tracetool/internal/tracetool/configuration"
	"github.com/tracetool/tracetool/internal/tracetool/eventsource"
	"github.com/tracetool/tracetool/internal/tracetool/report"
)

type App struct {
	// Parameters of all commands, from defaults, config files, the environment and flags.
	Params configuration.TracetoolConfig
	// Out is used to write reports. Defaults to standard out,
	// but can be overridden in tests to make assertions on the application's output.
	Out     io.Writer
	Metrics *metrics.Metrics
	// OpenDatabase connects to the event store.
	OpenDatabase func(config database.Config) (*goqu.Database, func(), error)
}

// New instantiates an App with default parameters, writing to standard output.
func New() *App {
	return &App{
		Params:       configuration.Default(),
		Out:          os.Stdout,
		Metrics:      metrics.Get(),
		OpenDatabase: database.Open,
	}
}

// run executes action with a context identifying the command and the run, then records how long it took and
// writes the metrics file if one is configured.
func (a *App) run(parent *tracetoolcontext.Context, command string, action func(ctx *tracetoolcontext.Context) error) error {
	ctx := tracetoolcontext.WithLogFields(parent, logrus.Fields{
		"command": command,
		"runId":   uuid.New().String(),
	})
	start := time.Now()
	err := action(ctx)
	a.Metrics.RecordCommandDuration(command, time.Since(start))
	if err != nil {
		logging.WithStacktrace(ctx.Log, err).Debug("command failed")
	}
	if a.Params.MetricsFile != "" {
		if metricsErr := a.Metrics.WriteToTextfile(a.Params.MetricsFile); metricsErr != nil {
			ctx.Log.Warnf("could not write metrics to %s: %v", a.Params.MetricsFile, metricsErr)
		}
	}
	return err
}

// withRepository opens the event store for the duration of action.
func (a *App) withRepository(action func(repo *eventsource.Repository) error) error {
	db, closeDb, err := a.OpenDatabase(a.Params.Database)
	if err != nil {
		return err
	}
	defer closeDb()
	return action(eventsource.New(db, a.Params.Schema))
}

// reportDiagnostics logs each diagnostic at warning level and counts it. Skipped records and excluded groups
// never fail a command.
func (a *App) reportDiagnostics(ctx *tracetoolcontext.Context, command string, diagnostics *multierror.Error) {
	errs := tracetoolerrors.Diagnostics(diagnostics)
	if len(errs) == 0 {
		return
	}
	skipped := 0
	excluded := 0
	for _, err := range errs {
		ctx.Log.Warn(err.Error())
		var computeErr *tracetoolerrors.ErrCompute
		if errors.As(err, &computeErr) {
			a.Metrics.RecordExcluded(command, "compute")
			excluded++
		} else {
			skipped++
		}
	}
	a.Metrics.RecordSkipped(command, skipped)
	ctx.Log.Warnf("%d records skipped, %d groups excluded", skipped, excluded)
}

func (a *App) write(rows report.Rows) error {
	return report.Write(a.Out, a.Params.Output.Format, rows)
}
