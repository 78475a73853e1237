// Package config loads the optional tabmeta.yaml project configuration.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// OutputConfig controls where and how table files are written.
type OutputConfig struct {
	Directory  string `yaml:"directory"`
	FilePrefix string `yaml:"file_prefix,omitempty"`
	FileSuffix string `yaml:"file_suffix,omitempty"`
	DateFormat string `yaml:"date_format,omitempty"`
}

// TableConfig is the per-table configuration.
type TableConfig struct {
	// Columns overrides the output column order for this table.
	Columns []string `yaml:"columns,omitempty"`

	// Filename overrides the complete file name for this table,
	// bypassing the prefix/suffix decoration.
	Filename string `yaml:"filename,omitempty"`
}

// PostgresConfig configures the optional database sink.
type PostgresConfig struct {
	// Connection is a PostgreSQL connection string. Password may be
	// omitted and supplied via PGPASSWORD / .env instead.
	Connection string `yaml:"connection,omitempty"`
}

// ProjectConfig is the root of tabmeta.yaml.
type ProjectConfig struct {
	Output   OutputConfig           `yaml:"output"`
	Tables   map[string]TableConfig `yaml:"tables,omitempty"`
	Postgres PostgresConfig         `yaml:"postgres,omitempty"`
}

// ColumnOverrides flattens per-table column orders into the map shape the
// stores consume. Tables without an override are absent.
func (c *ProjectConfig) ColumnOverrides() map[string][]string {
	if len(c.Tables) == 0 {
		return nil
	}
	overrides := make(map[string][]string)
	for name, table := range c.Tables {
		if len(table.Columns) > 0 {
			overrides[name] = table.Columns
		}
	}
	return overrides
}

// FilenameOverrides flattens per-table file names into the map shape the
// CSV store consumes. Tables without an override are absent.
func (c *ProjectConfig) FilenameOverrides() map[string]string {
	if len(c.Tables) == 0 {
		return nil
	}
	overrides := make(map[string]string)
	for name, table := range c.Tables {
		if table.Filename != "" {
			overrides[name] = table.Filename
		}
	}
	return overrides
}

const ConfigFileName = "tabmeta.yaml"

// Load reads tabmeta.yaml from the given directory.
func Load(dir string) (*ProjectConfig, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
