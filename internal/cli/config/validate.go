package config

import (
	"fmt"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.ShiftPolicy {
	case "", "ignore", "warn", "raise":
	default:
		return fmt.Errorf("shift_policy must be ignore, warn or raise, got %q", c.ShiftPolicy)
	}
	switch c.Check.Render {
	case "", "severity", "boolean":
	default:
		return fmt.Errorf("check.render must be severity or boolean, got %q", c.Check.Render)
	}
	return nil
}

// ValidateTarget checks that the settings needed for a database connection
// are present. Commands that never touch the database skip this.
func (c *Config) ValidateTarget() error {
	if c.Target == nil || c.Target.Database == "" {
		return fmt.Errorf("no database configured: set target.database in idoudw.yaml or IDOUDW_TARGET_DATABASE")
	}
	return nil
}
