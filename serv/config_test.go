package serv

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const devConfig = `
app_name: "HitsDB Development"
host_port: 0.0.0.0:8080
log_level: debug
log_format: simple
http_compress: true
default_limit: 100
plan_cache_size: 200
result_cache_size: 1000
result_cache_ttl: 5m
bench:
  iterations: 5
  workers: 2
database:
  type: postgres
  dsn: postgres://localhost:5432/clickbench
`

const testConfig = `
inherits: dev
log_level: warn
result_cache_size: 0
`

func TestReadInConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/config/dev.yml", []byte(devConfig), 0644))

	c, err := ReadInConfigFS("/config/dev", fs)
	require.NoError(t, err)

	assert.Equal(t, "HitsDB Development", c.AppName)
	assert.Equal(t, "debug", c.LogLevel)
	assert.True(t, c.HTTPGZip)
	assert.Equal(t, 100, c.Core.DefaultLimit)
	assert.Equal(t, 200, c.Core.PlanCacheSize)
	assert.Equal(t, 1000, c.Core.ResultCacheSize)
	assert.Equal(t, 5*time.Minute, c.Core.ResultCacheTTL)
	assert.Equal(t, 5, c.Bench.Iterations)
	assert.Equal(t, 2, c.Bench.Workers)
	assert.Equal(t, "postgres", c.DB.Type)
}

func TestReadInConfigInherits(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/config/dev.yml", []byte(devConfig), 0644))
	require.NoError(t, afero.WriteFile(fs, "/config/test.yml", []byte(testConfig), 0644))

	c, err := ReadInConfigFS("/config/test", fs)
	require.NoError(t, err)

	// overridden by test.yml
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, 0, c.Core.ResultCacheSize)

	// inherited from dev.yml
	assert.Equal(t, "HitsDB Development", c.AppName)
	assert.Equal(t, 100, c.Core.DefaultLimit)
}

func TestReadInConfigDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/config/dev.yml", []byte("app_name: x\n"), 0644))

	c, err := ReadInConfigFS("/config/dev", fs)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", c.HostPort)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 500, c.Core.PlanCacheSize)
	assert.Equal(t, 3, c.Bench.Iterations)
	assert.Equal(t, 1, c.Bench.Workers)
}

func TestGetConfigName(t *testing.T) {
	tests := map[string]string{
		"production":  "prod",
		"PRODUCTION":  "prod",
		"staging":     "stage",
		"test":        "test",
		"development": "dev",
		"":            "dev",
	}

	for env, want := range tests {
		t.Setenv("GO_ENV", env)
		assert.Equal(t, want, GetConfigName(), "GO_ENV=%s", env)
	}
}
