package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644)
	require.NoError(t, err)
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
output:
  directory: exports
  file_prefix: prod_
  file_suffix: _v2
  date_format: "2006-01-02"
tables:
  owners:
    columns: [name, id]
postgres:
  connection: postgres://etl@db.internal:5432/catalog
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "exports", cfg.Output.Directory)
	assert.Equal(t, "prod_", cfg.Output.FilePrefix)
	assert.Equal(t, "_v2", cfg.Output.FileSuffix)
	assert.Equal(t, "2006-01-02", cfg.Output.DateFormat)
	assert.Equal(t, []string{"name", "id"}, cfg.Tables["owners"].Columns)
	assert.Equal(t, "postgres://etl@db.internal:5432/catalog", cfg.Postgres.Connection)
}

func TestLoad_MinimalConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "output:\n  directory: out\n")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "out", cfg.Output.Directory)
	assert.Empty(t, cfg.Tables)
	assert.Empty(t, cfg.Postgres.Connection)
}

func TestLoad_MissingFileReturnsSentinel(t *testing.T) {
	cfg, err := Load(t.TempDir())

	assert.Nil(t, cfg)
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "output: [not a mapping")

	cfg, err := Load(dir)

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrConfigNotFound))
}

func TestColumnOverrides(t *testing.T) {
	cfg := &ProjectConfig{
		Tables: map[string]TableConfig{
			"owners": {Columns: []string{"name", "id"}},
			"tags":   {}, // no override configured
		},
	}

	overrides := cfg.ColumnOverrides()

	assert.Equal(t, map[string][]string{"owners": {"name", "id"}}, overrides)
}

func TestColumnOverrides_EmptyConfig(t *testing.T) {
	cfg := &ProjectConfig{}
	assert.Nil(t, cfg.ColumnOverrides())
}

func TestFilenameOverrides(t *testing.T) {
	cfg := &ProjectConfig{
		Tables: map[string]TableConfig{
			"owners": {Filename: "people.csv"},
			"tags":   {Columns: []string{"id", "name"}},
		},
	}

	assert.Equal(t, map[string]string{"owners": "people.csv"}, cfg.FilenameOverrides())
	assert.Nil(t, (&ProjectConfig{}).FilenameOverrides())
}
