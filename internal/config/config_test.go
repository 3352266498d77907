package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "https://localhost:8443/api/intel", cfg.Backend.BaseURL)
	assert.Equal(t, "Aegis-Intel", cfg.Identity.Realm)
	assert.Equal(t, "aegis-console", cfg.Identity.ClientID)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestApplyEnvironmentOverrides(t *testing.T) {
	t.Setenv("AEGIS_BACKEND_URL", "https://intel.example.com/api")
	t.Setenv("AEGIS_IDENTITY_REALM", "Test-Realm")
	t.Setenv("AEGIS_USERNAME", "raven")

	cfg := Default()
	cfg.ApplyEnvironmentOverrides()

	assert.Equal(t, "https://intel.example.com/api", cfg.Backend.BaseURL)
	assert.Equal(t, "Test-Realm", cfg.Identity.Realm)
	assert.Equal(t, "raven", cfg.Identity.Username)
	// Untouched values keep their defaults.
	assert.Equal(t, "aegis-console", cfg.Identity.ClientID)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("AEGIS_LOG_LEVEL=debug\n"), 0o600))

	// godotenv does not overwrite existing vars, so clear it first.
	t.Setenv("AEGIS_LOG_LEVEL", "")
	os.Unsetenv("AEGIS_LOG_LEVEL")

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, Default().Backend.BaseURL, cfg.Backend.BaseURL)
}
