package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// starterConfig is what `idoudw init` writes. Secrets stay out of the file;
// ${PGPASSWORD} is expanded from the environment at load time.
type starterConfig struct {
	Environment string `yaml:"environment"`
	Output      string `yaml:"output"`
	ShiftPolicy string `yaml:"shift_policy"`
	Target      struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Database string `yaml:"database"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Schema   string `yaml:"schema"`
	} `yaml:"target"`
	Check struct {
		ViewName    string `yaml:"view_name"`
		SourceTable string `yaml:"source_table"`
		SourceAlias string `yaml:"source_alias"`
		Render      string `yaml:"render"`
		ModelCode   string `yaml:"model_code"`
		Levels      []int  `yaml:"levels"`
	} `yaml:"check"`
}

// WriteDefault writes a starter config file. It refuses to overwrite an
// existing file.
func WriteDefault(path string) error {
	if path == "" {
		path = "idoudw.yaml"
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}

	var sc starterConfig
	sc.Environment = DefaultEnv
	sc.Output = DefaultOutput
	sc.ShiftPolicy = DefaultShiftPolicy
	sc.Target.Host = "localhost"
	sc.Target.Port = 5432
	sc.Target.Database = "dwbj"
	sc.Target.Username = "postgres"
	sc.Target.Password = "${PGPASSWORD}"
	sc.Target.Schema = "public"
	sc.Check.ViewName = DefaultViewName
	sc.Check.SourceTable = DefaultSourceTable
	sc.Check.SourceAlias = DefaultSourceAlias
	sc.Check.Render = DefaultRender
	sc.Check.ModelCode = DefaultModelCode
	sc.Check.Levels = []int{1, 2}

	data, err := yaml.Marshal(&sc)
	if err != nil {
		return fmt.Errorf("failed to render default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
