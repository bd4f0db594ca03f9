package monitor

import (
	"time"

	"github.com/pkg/errors"

	"github.com/tlstats/tlstats/pkg/toml"
)

const (
	// DefaultAggregateInterval is the period between aggregation passes.
	DefaultAggregateInterval = 10 * time.Second

	// DefaultHTTPBindAddress is the default address the stats endpoint
	// listens on.
	DefaultHTTPBindAddress = ":8086"
)

// Config represents the configuration for the aggregation monitor.
type Config struct {
	Enabled           bool          `toml:"enabled"`
	AggregateInterval toml.Duration `toml:"aggregate-interval"`
	HTTPBindAddress   string        `toml:"http-bind-address"`
}

// NewConfig returns an instance of Config with defaults.
func NewConfig() Config {
	return Config{
		Enabled:           true,
		AggregateInterval: toml.Duration(DefaultAggregateInterval),
		HTTPBindAddress:   DefaultHTTPBindAddress,
	}
}

// Validate validates that the configuration is acceptable.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.AggregateInterval <= 0 {
		return errors.New("monitor aggregate-interval must be positive")
	}
	return nil
}
