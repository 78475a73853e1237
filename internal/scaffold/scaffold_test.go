package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/tabmeta/internal/config"
)

func TestCreateProject_WritesStarterConfig(t *testing.T) {
	dir := t.TempDir()
	s := NewScaffolder(false)

	err := s.CreateProject(dir)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, config.ConfigFileName))
	require.NoError(t, err)
	assert.Contains(t, string(content), "output:")
}

func TestCreateProject_ScaffoldedConfigLoads(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewScaffolder(false).CreateProject(dir))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}

func TestCreateProject_CreatesTargetDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "project")

	err := NewScaffolder(false).CreateProject(dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, config.ConfigFileName))
	assert.NoError(t, err)
}

func TestCreateProject_RefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(existing, []byte("# mine\n"), 0o644))

	err := NewScaffolder(false).CreateProject(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to overwrite")

	content, readErr := os.ReadFile(existing)
	require.NoError(t, readErr)
	assert.Equal(t, "# mine\n", string(content), "existing file must be untouched")
}

func TestTemplatesEmbedded(t *testing.T) {
	entries, err := GetTemplatesFS().ReadDir("templates/default")
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}
