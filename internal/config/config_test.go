package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, 0.0, cfg.MinCostPerTask)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "localhost:3000", cfg.FlightAddr)
	assert.Equal(t, 30*time.Second, cfg.FlightTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BODKIN_WORKERS", "8")
	t.Setenv("BODKIN_MIN_COST_PER_TASK", "1024")
	t.Setenv("BODKIN_METRICS_ADDR", ":9191")
	t.Setenv("BODKIN_LOG_LEVEL", "debug")
	t.Setenv("BODKIN_LOG_FORMAT", "json")
	t.Setenv("BODKIN_FLIGHT_ADDR", "longbow:3000")
	t.Setenv("BODKIN_FLIGHT_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 1024.0, cfg.MinCostPerTask)
	assert.Equal(t, ":9191", cfg.MetricsAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "longbow:3000", cfg.FlightAddr)
	assert.Equal(t, 5*time.Second, cfg.FlightTimeout)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("BODKIN_WORKERS", "-1")
	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		MetricsAddr:   ":9090",
		FlightTimeout: time.Second,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative workers", func(c *Config) { c.Workers = -2 }},
		{"negative grain", func(c *Config) { c.MinCostPerTask = -1 }},
		{"empty metrics addr", func(c *Config) { c.MetricsAddr = "" }},
		{"zero flight timeout", func(c *Config) { c.FlightTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
