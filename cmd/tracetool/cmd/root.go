package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tracetool/tracetool/internal/common"
	"github.com/tracetool/tracetool/internal/common/tracetoolcontext"
	"github.com/tracetool/tracetool/internal/tracetool"
	"github.com/tracetool/tracetool/internal/tracetool/configuration"
)

const (
	CustomConfigLocation = "config"
	defaultConfigPath    = "./config/tracetool"
	// Flags carrying this annotation are bound to the configuration key it names.
	configKeyAnnotation = "tracetool_config_key"
	// A command annotation "tracetool_default:<key>" replaces the default of key while that command runs.
	defaultAnnotationPrefix = "tracetool_default:"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	return newRootCmd(tracetool.New())
}

func newRootCmd(app *tracetool.App) *cobra.Command {
	v := viper.New()
	configuration.SetDefaults(v)

	cmd := &cobra.Command{
		Use:           "tracetool",
		SilenceUsage:  true,
		SilenceErrors: true,
		Short:         "Analyzes query execution traces: overlap, statistics and aggregated time series.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, v, app)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringSlice(CustomConfigLocation, nil, "Config file to merge over the defaults; may be given more than once")
	flags.Bool("verbose", false, "Log timestamped debug output, including queries")
	bindFlag(flags, "database", "database.path", "", "Path of the sqlite event store")
	bindFlag(flags, "database-type", "database.type", "", "Event store type: sqlite or postgres")
	bindFlag(flags, "start", "filter.start", "", "Only events at or after this partial date, e.g. 2023-03")
	bindFlag(flags, "end", "filter.end", "", "Only events up to the end of this partial date")
	bindFlag(flags, "where", "filter.where", "", "SQL predicate passed to the event store")
	flags.Bool("workhours", false, "Only events inside the configured work hours")
	annotate(flags, "workhours", "filter.workHours")
	flags.String("format", "", "Output format: csv, tsv or table")
	annotate(flags, "format", "output.format")
	flags.Int("parallelism", 0, "Maximum number of groups or series processed concurrently")
	annotate(flags, "parallelism", "parallelism")
	bindFlag(flags, "metrics-file", "metricsFile", "", "Write run metrics to this file in the prometheus text format")

	cmd.AddCommand(
		computeOverlapCmd(app),
		computeOverlapPCACmd(app),
		statisticsCmd(app),
		viewStatisticsCmd(app),
		formStatisticsCmd(app),
		aggregateCmd(app),
		seriesCmd(app),
		convertUnitCmd(app),
		versionCmd(app),
	)
	return cmd
}

// initParams loads the configuration of the command being executed, binding its flags first so that flags
// given on the command line take precedence over files and the environment.
func initParams(cmd *cobra.Command, v *viper.Viper, app *tracetool.App) error {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		common.ConfigureVerboseLogging()
	}
	var bindErr error
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if keys := flag.Annotations[configKeyAnnotation]; len(keys) == 1 && bindErr == nil {
			bindErr = v.BindPFlag(keys[0], flag)
		}
	})
	if bindErr != nil {
		return bindErr
	}
	for name, value := range cmd.Annotations {
		if key := strings.TrimPrefix(name, defaultAnnotationPrefix); key != name {
			v.SetDefault(key, value)
		}
	}
	configs, err := cmd.Flags().GetStringSlice(CustomConfigLocation)
	if err != nil {
		return err
	}
	return common.LoadConfig(v, &app.Params, defaultConfigPath, configs)
}

func bindFlag(flags *pflag.FlagSet, name string, key string, value string, usage string) {
	flags.String(name, value, usage)
	annotate(flags, name, key)
}

func annotate(flags *pflag.FlagSet, name string, key string) {
	// Only fails for unknown flags.
	_ = flags.SetAnnotation(name, configKeyAnnotation, []string{key})
}

// withInterrupt runs action with a context that is cancelled on SIGINT or SIGTERM.
func withInterrupt(action func(ctx *tracetoolcontext.Context, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := tracetoolcontext.WithInterrupt(tracetoolcontext.Background())
		defer cancel()
		return action(ctx, args)
	}
}
