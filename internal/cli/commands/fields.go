package commands

import (
	"github.com/spf13/cobra"

	"github.com/ProcedureOriented/IDOU-DW-PG/internal/cli/output"
	"github.com/ProcedureOriented/IDOU-DW-PG/pkg/formula"
)

// NewFieldsCommand creates the fields command.
func NewFieldsCommand() *cobra.Command {
	var (
		format  string
		ordered bool
	)

	cmd := &cobra.Command{
		Use:   "fields <formula>",
		Short: "Extract the fields referenced by a formula",
		Long: `Parse a formula and list the field codes it references. By default
shift suffixes are folded to their origin field and duplicates collapse;
--ordered keeps every occurrence in source order with its suffix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := newRenderer(cmd, format)

			fields, err := formula.Fields(args[0], !ordered)
			if err != nil {
				return err
			}

			if r.Mode() == output.ModeJSON {
				return r.JSON(map[string]any{"formula": args[0], "fields": fields})
			}
			rows := make([][]string, 0, len(fields))
			for _, f := range fields {
				rows = append(rows, []string{f})
			}
			return r.Table([]string{"Field"}, rows)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format override (text|markdown|json)")
	cmd.Flags().BoolVar(&ordered, "ordered", false, "Keep source order and duplicates, with shift suffixes")
	return cmd
}
