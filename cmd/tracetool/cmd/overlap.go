package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tracetool/tracetool/internal/common/tracetoolcontext"
	"github.com/tracetool/tracetool/internal/tracetool"
)

func computeOverlapCmd(app *tracetool.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute-overlap",
		Short: "Compute the overlap of every tracked event and the active event count over time",
		Long: `Reads the events of every tracked group, computes for each event how long it ran concurrently
with other events, and replaces the overlap and active count tables with the result.`,
		Args: cobra.NoArgs,
		RunE: withInterrupt(func(ctx *tracetoolcontext.Context, _ []string) error {
			return app.ComputeOverlap(ctx)
		}),
	}
	cmd.Flags().Bool("partition-by-group", false, "Only credit overlap between events of the same group")
	annotate(cmd.Flags(), "partition-by-group", "overlap.partitionByGroup")
	return cmd
}

func computeOverlapPCACmd(app *tracetool.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute-overlap-pca",
		Short: "Report per group how much of the execution time variance overlap explains",
		Long: `Joins events with the overlap table written by compute-overlap and reports, per group, the
share of the joint variance of execution time and overlap along the first principal axis.
A where predicate may refer to the events as "e" and to the overlap table as "o".`,
		Args: cobra.NoArgs,
		RunE: withInterrupt(func(ctx *tracetoolcontext.Context, _ []string) error {
			return app.ComputeOverlapPCA(ctx)
		}),
	}
	cmd.Flags().Int("min-samples", 0, "Exclude groups with fewer events")
	annotate(cmd.Flags(), "min-samples", "correlation.minSamples")
	bindFlag(cmd.Flags(), "overlap-metric", "correlation.overlapMetric", "", "Overlap as absolute nanoseconds or as percent of execution time")
	bindFlag(cmd.Flags(), "q3-unit", "correlation.q3Unit", "", "Unit of the reported execution time Q3, e.g. ms")
	return cmd
}
