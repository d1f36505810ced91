package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, cfg.Models.Default)
	assert.Equal(t, DefaultMaxColumns, cfg.MaxColumns)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.InDelta(t, DefaultTemperature, cfg.Temperature, 1e-6)
	assert.Equal(t, "postgres", cfg.Database.Dialect)
	for _, stage := range []string{"mapping", "transform", "validation", "documentation"} {
		assert.Equal(t, DefaultModel, cfg.Models.ForStage(stage), stage)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ETL_COPILOT_MODELS_VALIDATION", "gemini-1.5-pro")
	t.Setenv("ETL_COPILOT_MAX_COLUMNS", "12")
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.MaxColumns)
	assert.Equal(t, "from-env", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-1.5-pro", cfg.Models.ForStage("validation"))
	assert.Equal(t, DefaultModel, cfg.Models.ForStage("mapping"))
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "copilot.yaml")
	content := `
models:
  default: gemini-2.0-flash
  documentation: gemini-1.5-pro
max_columns: 0
temperature: 0.7
database:
  dialect: MySQL
  port: 3306
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", cfg.Models.ForStage("transform"))
	assert.Equal(t, "gemini-1.5-pro", cfg.Models.ForStage("documentation"))
	assert.Equal(t, DefaultMaxColumns, cfg.MaxColumns, "non-positive max_columns falls back to default")
	assert.Equal(t, "mysql", cfg.Database.Dialect)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.InDelta(t, 0.7, cfg.Temperature, 1e-6)
}

func TestLoadRejectsOutOfRangeTemperature(t *testing.T) {
	t.Setenv("ETL_COPILOT_TEMPERATURE", "3.5")
	_, err := Load(NewViper(), "")
	assert.ErrorContains(t, err, "temperature must be between 0 and 2")
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestForStageUnknownStage(t *testing.T) {
	m := ModelConfig{}
	assert.Equal(t, DefaultModel, m.ForStage("unknown"))
}
