package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakeshift/lakeshift/internal/config"
)

// chdir mirrors t.Chdir, which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "DATABRICKS_TOKEN", cfg.TokenEnv)
	assert.Equal(t, "main", cfg.Catalog)
	assert.Equal(t, "default", cfg.Schema)
	assert.Equal(t, 5*time.Minute, cfg.PollTimeout)
	assert.Equal(t, "generated", cfg.OutputDir)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
workspace:
  host: https://dbc.example.com
  token_env: MY_TOKEN
deploy:
  catalog: prod
  schema: shop
  warehouse_id: wh123
  poll_timeout: 90s
output:
  dir: out
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lakeshift.yml"), []byte(content), 0o644))
	chdir(t, dir)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://dbc.example.com", cfg.Host)
	assert.Equal(t, "MY_TOKEN", cfg.TokenEnv)
	assert.Equal(t, "prod", cfg.Catalog)
	assert.Equal(t, "shop", cfg.Schema)
	assert.Equal(t, "wh123", cfg.WarehouseID)
	assert.Equal(t, 90*time.Second, cfg.PollTimeout)
	assert.Equal(t, "out", cfg.OutputDir)
}

func TestLoadHostFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LAKESHIFT_WORKSPACE_HOST", "https://env.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.Host)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lakeshift.yml"), []byte("workspace: ["), 0o644))
	chdir(t, dir)

	_, err := config.Load()
	assert.Error(t, err)
}

func TestTokenResolution(t *testing.T) {
	cfg := &config.Config{TokenEnv: "LAKESHIFT_TEST_TOKEN"}

	_, err := cfg.Token()
	assert.Error(t, err)

	t.Setenv("LAKESHIFT_TEST_TOKEN", "secret")
	token, err := cfg.Token()
	require.NoError(t, err)
	assert.Equal(t, "secret", token)
}
