package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tracetool/tracetool/internal/tracetool"
)

func convertUnitCmd(app *tracetool.App) *cobra.Command {
	return &cobra.Command{
		Use:   "convert-unit VALUE",
		Short: "Convert a partial date, a duration or a nanosecond timestamp",
		Long: `Helps writing predicates by hand. A partial date such as "2023-03" is printed as the nanosecond
timestamps of its first and last instant, a duration such as "15m" as nanoseconds, and a nanosecond
timestamp as a UTC date.

VALUE is tried as a partial date first, then as a duration, then as a timestamp. A four digit number is
therefore always read as a year: "1700" prints the range of the year 1700, not a date 1700ns after the epoch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ConvertUnit(args[0])
		},
	}
}

// versionCmd prints version info and exits.
func versionCmd(app *tracetool.App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Version()
		},
	}
}
