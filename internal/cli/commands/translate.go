package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ProcedureOriented/IDOU-DW-PG/internal/cli/config"
	"github.com/ProcedureOriented/IDOU-DW-PG/internal/cli/output"
	"github.com/ProcedureOriented/IDOU-DW-PG/pkg/formula"
)

// NewTranslateCommand creates the translate command.
func NewTranslateCommand() *cobra.Command {
	var (
		format     string
		sign       string
		policyName string
	)

	cmd := &cobra.Command{
		Use:   "translate <field>...",
		Short: "Decode time-shift markers and render canonical field names",
		Long: `Decode the time-shift marker on each field (symbolic like
total_assets^1 or natural-language via --sign 上年) into its unit, direction
and offset, and render the canonical shifted name other components rely on.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := newRenderer(cmd, format)
			logger := config.GetLogger(cmd.Context())

			if policyName == "" {
				policyName = currentConfig().ShiftPolicy
			}
			policy, err := shiftPolicy(policyName)
			if err != nil {
				return err
			}

			d := formula.NewDecoder(logger)

			type translation struct {
				Field     string `json:"field"`
				Canonical string `json:"canonical"`
				Origin    string `json:"origin"`
				Unit      string `json:"unit,omitempty"`
				Direction string `json:"direction,omitempty"`
				Offset    int    `json:"offset"`
				Shifted   bool   `json:"shifted"`
			}

			results := make([]translation, 0, len(args))
			for _, field := range args {
				sf, err := d.Parse(field, sign, policy)
				if err != nil {
					return err
				}
				canonical, err := d.Translate(field, sign, policy)
				if err != nil {
					return err
				}
				results = append(results, translation{
					Field:     field,
					Canonical: canonical,
					Origin:    sf.Origin,
					Unit:      sf.Unit,
					Direction: sf.Direction,
					Offset:    sf.Offset,
					Shifted:   sf.OK && sf.Executable == "",
				})
			}

			if r.Mode() == output.ModeJSON {
				if len(results) == 1 {
					return r.JSON(results[0])
				}
				return r.JSON(results)
			}

			rows := make([][]string, 0, len(results))
			for _, t := range results {
				rows = append(rows, []string{
					t.Field, t.Canonical, t.Unit, t.Direction, strconv.Itoa(t.Offset),
				})
			}
			return r.Table([]string{"Field", "Canonical", "Unit", "Direction", "Offset"}, rows)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format override (text|markdown|json)")
	cmd.Flags().StringVarP(&sign, "sign", "s", "", "Natural-language shift sign (e.g. 上年, 下季, 本年末)")
	cmd.Flags().StringVar(&policyName, "policy", "", "Unrecognized marker handling (ignore|warn|raise)")
	return cmd
}
