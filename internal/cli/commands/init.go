package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ProcedureOriented/IDOU-DW-PG/internal/cli/config"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter idoudw.yaml",
		Long: `Write a starter configuration file with the default connection,
shift-policy and check-view settings. Secrets are referenced via environment
variables rather than stored in the file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = "idoudw.yaml"
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Config file path (default: ./idoudw.yaml)")
	return cmd
}
