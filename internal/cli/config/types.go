// Package config provides configuration management for the idoudw CLI:
// a YAML file, IDOUDW_-prefixed environment variables and command-line
// flags, merged in that order of precedence.
package config

import (
	"github.com/ProcedureOriented/IDOU-DW-PG/internal/store"
)

// TargetConfig is an alias for the store connection settings, so CLI code
// can use config.TargetConfig without importing internal/store.
type TargetConfig = store.Config

// CheckConfig holds the check-view build settings.
type CheckConfig struct {
	ViewName    string `koanf:"view_name"`
	SourceTable string `koanf:"source_table"`
	SourceAlias string `koanf:"source_alias"`
	// Render is "severity" (CASE WHEN scoring) or "boolean".
	Render    string `koanf:"render"`
	ModelCode string `koanf:"model_code"`
	Levels    []int  `koanf:"levels"`
}

// Config holds all CLI configuration options.
type Config struct {
	Environment string `koanf:"environment"`
	Verbose     bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`
	// ShiftPolicy controls how unrecognized time-shift markers are treated
	// during field translation: ignore, warn or raise.
	ShiftPolicy  string               `koanf:"shift_policy"`
	Target       *TargetConfig        `koanf:"target"`
	Check        CheckConfig          `koanf:"check"`
	Environments map[string]EnvConfig `koanf:"environments"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	Target *TargetConfig `koanf:"target"`
	Check  *CheckConfig  `koanf:"check"`
}

// Default configuration values.
const (
	DefaultEnv         = "dev"
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultShiftPolicy = "ignore"
	DefaultViewName    = "c_check"
	DefaultSourceTable = "temp_avaliable_data2"
	DefaultSourceAlias = "tad2"
	DefaultRender      = "severity"
	DefaultModelCode   = "model1"
)
