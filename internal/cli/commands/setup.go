// Package commands implements the idoudw subcommands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ProcedureOriented/IDOU-DW-PG/internal/cli/config"
	"github.com/ProcedureOriented/IDOU-DW-PG/internal/cli/output"
	"github.com/ProcedureOriented/IDOU-DW-PG/internal/store"
	"github.com/ProcedureOriented/IDOU-DW-PG/pkg/formula"
)

// currentConfig returns the loaded configuration, or an empty one when a
// command runs outside the root command's PersistentPreRunE (tests).
func currentConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{Target: &config.TargetConfig{}}
}

// newRenderer builds a renderer on the command's streams, honoring the
// configured output format and an optional per-command override.
func newRenderer(cmd *cobra.Command, formatOverride string) *output.Renderer {
	format := formatOverride
	if format == "" {
		format = currentConfig().OutputFormat
	}
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format))
}

// openStore connects to the configured target database.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg := currentConfig()
	if err := cfg.ValidateTarget(); err != nil {
		return nil, err
	}
	logger := config.GetLogger(cmd.Context())
	return store.Open(cmd.Context(), *cfg.Target, logger)
}

// shiftPolicy maps the configured policy name to the decoder's type.
func shiftPolicy(name string) (formula.Policy, error) {
	switch name {
	case "", "ignore":
		return formula.PolicyIgnore, nil
	case "warn":
		return formula.PolicyWarn, nil
	case "raise":
		return formula.PolicyRaise, nil
	}
	return formula.PolicyIgnore, fmt.Errorf("unknown shift policy %q", name)
}
