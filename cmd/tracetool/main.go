package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/tracetool/tracetool/cmd/tracetool/cmd"
	"github.com/tracetool/tracetool/internal/common"
	"github.com/tracetool/tracetool/internal/common/logging"
	"github.com/tracetool/tracetool/internal/common/metrics"
	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
)

func main() {
	common.ConfigureCommandLineLogging()
	log.AddHook(logging.NewPrometheusHook(metrics.Get().Registry()))
	if err := cmd.RootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(tracetoolerrors.ExitCode(err))
	}
}
