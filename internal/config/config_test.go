package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "googleai", cfg.Model.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model.Name)
	assert.Equal(t, 2, cfg.Generation.MaxAttempts)
	assert.Equal(t, 5, cfg.Generation.MaxExpansionPasses)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readings.toml")
	content := `
[model]
name = "gemini-2.5-flash"

[queue]
max_workers = 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model.Name)
	assert.Equal(t, 8, cfg.Queue.MaxWorkers)
	// Untouched keys keep their defaults.
	assert.Equal(t, "googleai", cfg.Model.Provider)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readings.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\naddr = \":9999\"\n"), 0o644))

	t.Setenv("READINGS_SERVER_ADDR", ":7777")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Server.Addr)
}

func TestValidate(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	cfg.Model.APIKey = "key"
	assert.NoError(t, Validate(cfg))

	cfg.Model.Provider = "oracle"
	assert.Error(t, Validate(cfg))

	cfg.Model.Provider = "googleai"
	cfg.Generation.MaxAttempts = 0
	assert.Error(t, Validate(cfg))
}

func TestInitConfig_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readings.toml")
	require.NoError(t, InitConfig(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "googleai", cfg.Model.Provider)

	assert.Error(t, InitConfig(path))
}
