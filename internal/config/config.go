// Package config loads workspace settings from lakeshift.yml with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds workspace connection and deployment settings.
type Config struct {
	Host        string
	TokenEnv    string
	Catalog     string
	Schema      string
	WarehouseID string
	PollTimeout time.Duration
	OutputDir   string
}

// Load reads lakeshift.yml from the working directory. Every field has a
// default except the workspace host, which may also come from the
// LAKESHIFT_WORKSPACE_HOST environment variable.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("lakeshift")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvPrefix("LAKESHIFT")

	v.SetDefault("workspace.token_env", "DATABRICKS_TOKEN")
	v.SetDefault("deploy.catalog", "main")
	v.SetDefault("deploy.schema", "default")
	v.SetDefault("deploy.poll_timeout", "5m")
	v.SetDefault("output.dir", "generated")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read lakeshift.yml: %w", err)
		}
		// No config file is fine; defaults and env cover everything.
	}

	timeout, err := time.ParseDuration(v.GetString("deploy.poll_timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid deploy.poll_timeout: %w", err)
	}

	cfg := &Config{
		Host:        v.GetString("workspace.host"),
		TokenEnv:    v.GetString("workspace.token_env"),
		Catalog:     v.GetString("deploy.catalog"),
		Schema:      v.GetString("deploy.schema"),
		WarehouseID: v.GetString("deploy.warehouse_id"),
		PollTimeout: timeout,
		OutputDir:   v.GetString("output.dir"),
	}
	if cfg.Host == "" {
		cfg.Host = os.Getenv("LAKESHIFT_WORKSPACE_HOST")
	}
	return cfg, nil
}

// Token resolves the workspace token from the configured environment
// variable.
func (c *Config) Token() (string, error) {
	token := os.Getenv(c.TokenEnv)
	if token == "" {
		return "", fmt.Errorf("workspace token not set; export %s", c.TokenEnv)
	}
	return token, nil
}
