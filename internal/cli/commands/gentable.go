package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ProcedureOriented/IDOU-DW-PG/internal/cli/config"
	"github.com/ProcedureOriented/IDOU-DW-PG/pkg/schema"
)

// NewGenTableCommand creates the gen-table command.
func NewGenTableCommand() *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "gen-table <table-code>...",
		Short: "Generate CREATE TABLE DDL from the data dictionary",
		Long: `Read r_dict_table_info, r_dict_field_info and
r_dict_table_constraints for each table code and render the full CREATE TABLE
statement with comments and the update trigger. With --apply the statements
are executed against the target database.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := config.GetLogger(ctx)

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			for _, tableCode := range args {
				table, err := s.Table(ctx, tableCode)
				if err != nil {
					return err
				}
				fields, err := s.Fields(ctx, tableCode)
				if err != nil {
					return err
				}
				if len(fields) == 0 {
					return fmt.Errorf("table %s has no enabled fields in r_dict_field_info", tableCode)
				}
				constraints, err := s.Constraints(ctx, tableCode)
				if err != nil {
					return err
				}

				ddl, err := schema.CreateTableSQL(table, fields, constraints, s.Schema())
				if err != nil {
					return err
				}

				if apply {
					if err := s.Exec(ctx, ddl); err != nil {
						return fmt.Errorf("failed to create table %s: %w", tableCode, err)
					}
					logger.Info("created table", "table", tableCode)
					fmt.Fprintf(cmd.OutOrStdout(), "Created %s.%s\n", s.Schema(), tableCode)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), ddl)
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Execute the generated DDL against the target database")
	return cmd
}
