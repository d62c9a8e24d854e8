package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the runtime settings for the quantization engine. All
// fields come from BODKIN_* environment variables; a .env file in the
// working directory is loaded first when present.
type Config struct {
	Workers        int     `envconfig:"WORKERS" default:"0"`              // 0 means NumCPU
	MinCostPerTask float64 `envconfig:"MIN_COST_PER_TASK" default:"0"`    // 0 means built-in default
	MetricsAddr    string  `envconfig:"METRICS_ADDR" default:":9090"`
	LogLevel       string  `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat      string  `envconfig:"LOG_FORMAT" default:"console"`

	FlightAddr    string        `envconfig:"FLIGHT_ADDR" default:"localhost:3000"`
	FlightTimeout time.Duration `envconfig:"FLIGHT_TIMEOUT" default:"30s"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	// Missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("BODKIN", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers: %d (must be non-negative)", c.Workers)
	}
	if c.MinCostPerTask < 0 {
		return fmt.Errorf("invalid min_cost_per_task: %f (must be non-negative)", c.MinCostPerTask)
	}
	if c.MetricsAddr == "" {
		return fmt.Errorf("invalid metrics_addr: must not be empty")
	}
	if c.FlightTimeout <= 0 {
		return fmt.Errorf("invalid flight_timeout: %s (must be positive)", c.FlightTimeout)
	}
	return nil
}
