package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ProcedureOriented/IDOU-DW-PG/internal/cli/config"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the configuration tables",
		Long: `Run the embedded migrations that create the data-dictionary and
check-rule tables (r_dict_*, r_subject_dict, r_check_*) plus the shared
update trigger function. --status prints the current migration version
without changing anything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := config.GetLogger(cmd.Context())

			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if status {
				version, err := s.MigrationVersion()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Migration version: %d\n", version)
				return nil
			}

			if err := s.Migrate(); err != nil {
				return err
			}
			version, err := s.MigrationVersion()
			if err != nil {
				return err
			}
			logger.Info("migrations applied", "version", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration tables up to date (version %d)\n", version)
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "Print the current migration version")
	return cmd
}
