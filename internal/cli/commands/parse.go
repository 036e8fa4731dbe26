package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ProcedureOriented/IDOU-DW-PG/internal/cli/output"
	"github.com/ProcedureOriented/IDOU-DW-PG/pkg/formula"
)

// parseResult is the JSON shape of one classified formula.
type parseResult struct {
	Input       string   `json:"input"`
	Cleaned     string   `json:"cleaned"`
	Kind        string   `json:"kind"`
	Formula     string   `json:"formula"`
	TimeUnit    string   `json:"time_unit,omitempty"`
	StatsMethod string   `json:"stats_method,omitempty"`
	StatsField  string   `json:"stats_field,omitempty"`
	GroupKeys   []string `json:"group_keys,omitempty"`
	Condition   string   `json:"condition,omitempty"`
	Target      string   `json:"target,omitempty"`
	Direction   string   `json:"direction,omitempty"`
	Dimensions  []string `json:"dimensions,omitempty"`
	Fields      []string `json:"fields"`
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse <formula>...",
		Short: "Classify formulas and show their parsed structure",
		Long: `Normalize and classify one or more formulas, printing the detected
kind (compute, fixed judgement, time calculation, statistic or free-parameter
judgement) along with the parsed clauses and referenced fields.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := newRenderer(cmd, format)

			results := make([]parseResult, 0, len(args))
			for _, raw := range args {
				cleaned := formula.Clean(raw)
				parsed, err := formula.Parse(cleaned)
				if err != nil {
					return err
				}
				res := parseResult{
					Input:       raw,
					Cleaned:     cleaned,
					Kind:        parsed.Kind.String(),
					Formula:     parsed.Formula,
					TimeUnit:    parsed.TimeUnit,
					StatsMethod: parsed.StatsMethod,
					StatsField:  parsed.StatsField,
					GroupKeys:   parsed.GroupKeys,
					Condition:   parsed.Condition,
					Target:      parsed.Target,
					Direction:   parsed.Direction,
					Dimensions:  parsed.DimensionNames,
					Fields:      formula.ExtractFields(parsed.Formula, true),
				}
				results = append(results, res)
			}

			if r.Mode() == output.ModeJSON {
				if len(results) == 1 {
					return r.JSON(results[0])
				}
				return r.JSON(results)
			}

			rows := make([][]string, 0, len(results))
			for _, res := range results {
				rows = append(rows, []string{
					res.Input, res.Kind, res.Formula, strings.Join(res.Fields, ", "),
				})
			}
			return r.Table([]string{"Formula", "Kind", "Normalized", "Fields"}, rows)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format override (text|markdown|json)")
	return cmd
}
