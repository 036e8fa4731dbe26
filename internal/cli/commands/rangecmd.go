package commands

import (
	"github.com/spf13/cobra"

	"github.com/ProcedureOriented/IDOU-DW-PG/internal/cli/output"
	"github.com/ProcedureOriented/IDOU-DW-PG/pkg/formula"
)

// NewRangeCommand creates the range command and its subcommands.
func NewRangeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "range",
		Short: "Convert between interval notation, tuples and comparisons",
	}
	cmd.AddCommand(newRangeParseCommand())
	cmd.AddCommand(newRangeRenderCommand())
	cmd.AddCommand(newRangeCompareCommand())
	return cmd
}

func newRangeParseCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse <range>",
		Short: "Parse interval notation into its structural parts",
		Long: `Parse interval text like "[1,2)" or "(-2,-1],[1,2)" into bounds and
inclusivity. Full-width punctuation is normalized first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := newRenderer(cmd, format)

			ranges, err := formula.ParseMultiRange(args[0])
			if err != nil {
				return err
			}

			if r.Mode() == output.ModeJSON {
				return r.JSON(ranges)
			}
			rows := make([][]string, 0, len(ranges))
			for _, rng := range ranges {
				rows = append(rows, []string{rng.String(), rng.Lower, rng.Upper, string(rng.Inclusive)})
			}
			return r.Table([]string{"Range", "Lower", "Upper", "Inclusive"}, rows)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format override (text|markdown|json)")
	return cmd
}

func newRangeRenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <method> <threshold>...",
		Short: "Render a comparison method and thresholds as interval notation",
		Long: `Render a configured comparison method (大于, 小于等于, 内左包, 外右包, ...)
with its numeric thresholds as interval text, e.g. "大于 0.1" -> "(0.1, +∞)".`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			thresholds := make([]float64, 0, len(args)-1)
			for _, a := range args[1:] {
				n, err := formula.ParseNumber(a)
				if err != nil {
					return err
				}
				thresholds = append(thresholds, n)
			}

			rendered, err := formula.RenderRange(args[0], thresholds)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write([]byte(rendered + "\n"))
			return err
		},
	}
	return cmd
}

func newRangeCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <code> <method> <threshold>...",
		Short: "Render a comparison expression for a field code",
		Long: `Render an executable comparison for a field, e.g.
"compare x 内 1 9" -> "x>1 & x<9". Thresholds may be numbers or column names.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rendered, err := formula.RenderComparison(args[0], args[1], args[2:])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write([]byte(rendered + "\n"))
			return err
		},
	}
	return cmd
}
