package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ProcedureOriented/IDOU-DW-PG/internal/cli/config"
	"github.com/ProcedureOriented/IDOU-DW-PG/pkg/checkview"
)

// NewGenViewCommand creates the gen-view command.
func NewGenViewCommand() *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "gen-view",
		Short: "Generate the check view from the configured rules",
		Long: `Load the subject dictionary and both rule families
(r_check_cross, r_check_important_subject), compile every rule that passes
the configured model and level filter, and assemble the CREATE OR REPLACE
VIEW statement. With --apply the view is created on the target database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := currentConfig()
			logger := config.GetLogger(ctx)

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			subjects, err := s.Subjects(ctx)
			if err != nil {
				return err
			}
			cross, err := s.CrossRules(ctx)
			if err != nil {
				return err
			}
			subjectRules, err := s.SubjectRules(ctx)
			if err != nil {
				return err
			}

			compiler := checkview.NewCompiler(subjects, logger)
			filter := checkview.RuleFilter{ModelCode: cfg.Check.ModelCode, Levels: cfg.Check.Levels}
			compiled, err := compiler.CompileAll(ctx, cross, subjectRules, filter)
			if err != nil {
				return err
			}

			mode := checkview.RenderSeverity
			if cfg.Check.Render == "boolean" {
				mode = checkview.RenderBoolean
			}
			viewSpec := checkview.ViewSpec{
				Schema:      s.Schema(),
				ViewName:    cfg.Check.ViewName,
				SourceTable: cfg.Check.SourceTable,
				SourceAlias: cfg.Check.SourceAlias,
				Mode:        mode,
			}
			// Column comments for the view come from the data dictionary when
			// the view is registered there.
			if comments, err := s.Fields(ctx, cfg.Check.ViewName); err == nil {
				viewSpec.Comments = comments
			}

			sql, err := checkview.BuildViewSQL(viewSpec, compiled)
			if err != nil {
				return err
			}

			if apply {
				if err := s.Exec(ctx, sql); err != nil {
					return fmt.Errorf("failed to create view %s: %w", cfg.Check.ViewName, err)
				}
				logger.Info("created check view", "view", cfg.Check.ViewName, "rules", len(compiled))
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s.%s (%d rules)\n", s.Schema(), cfg.Check.ViewName, len(compiled))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), sql)
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Execute the generated view DDL against the target database")
	return cmd
}
