package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("app:\n  env: test\n"))
	require.NoError(t, err)

	assert.Equal(t, "strengthradar", cfg.App.Name)
	assert.Equal(t, "test", cfg.App.Env)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "https://query1.finance.yahoo.com", cfg.DataSources.Yahoo.BaseURL)
	assert.Equal(t, 16, cfg.DataSources.Yahoo.Workers)
	assert.Equal(t, "file", cfg.Catalog.Source)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "8080", cfg.API.Port)
	assert.Equal(t, 150, cfg.Pipeline.CandidateCap)
	assert.Equal(t, 6, cfg.Pipeline.ScoreThreshold)
	assert.Equal(t, 45, cfg.Pipeline.HistorySessions)
	assert.Equal(t, 10, cfg.Pipeline.MinSessions)
	assert.Equal(t, 15*time.Second, cfg.Pipeline.FetchTimeout)
	assert.Equal(t, "50 12 * * 1-5", cfg.Scheduler.PushCron)
	assert.Equal(t, 8, cfg.Scheduler.TopN)
	assert.Equal(t, 2500.0, cfg.Scheduler.Criteria.MinVolumeLots)
}

func TestParse_Values(t *testing.T) {
	data := []byte(`
data_sources:
  yahoo:
    timeout: 3s
    workers: 4
pipeline:
  candidate_cap: 50
  score_threshold: 8
scheduler:
  enabled: true
  criteria:
    min_price: 20
    max_price: 500
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.DataSources.Yahoo.Timeout)
	assert.Equal(t, 4, cfg.DataSources.Yahoo.Workers)
	assert.Equal(t, 50, cfg.Pipeline.CandidateCap)
	assert.Equal(t, 8, cfg.Pipeline.ScoreThreshold)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 20.0, cfg.Scheduler.Criteria.MinPrice)
	assert.Equal(t, 500.0, cfg.Scheduler.Criteria.MaxPrice)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("pipeline: [unclosed"))
	assert.Error(t, err)
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "DATABASE")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("YAHOO_WORKERS", "bad")
	t.Setenv("API_PORT", "9090")

	cfg, err := Parse([]byte("api:\n  port: \"8000\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "database", cfg.Catalog.Source)
	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, 6543, cfg.Database.Postgres.Port)
	assert.Equal(t, 16, cfg.DataSources.Yahoo.Workers)
	assert.Equal(t, "9090", cfg.API.Port)
	assert.Contains(t, cfg.DSN(), "host=db.internal port=6543")
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "strengthradar", cfg.App.Name)

	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  name: radar\n"), 0o644))
	cfg, err = LoadOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, "radar", cfg.App.Name)
}

func TestGetDefaultConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("APP_ENV", "prod")
	assert.Equal(t, "configs/prod/app.yaml", GetDefaultConfigPath())

	t.Setenv("CONFIG_PATH", "/etc/radar.yaml")
	assert.Equal(t, "/etc/radar.yaml", GetDefaultConfigPath())
}
