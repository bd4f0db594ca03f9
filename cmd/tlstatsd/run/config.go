package run

import (
	"io/ioutil"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/tlstats/tlstats/monitor"
	"github.com/tlstats/tlstats/pkg/logger"
	itoml "github.com/tlstats/tlstats/pkg/toml"
)

const (
	// DefaultWorkloadWorkers is the number of synthetic stat producers.
	DefaultWorkloadWorkers = 4

	// DefaultWorkloadUpdateInterval is the delay between updates in each
	// worker.
	DefaultWorkloadUpdateInterval = 10 * time.Millisecond
)

// Config represents the configuration for the tlstatsd daemon.
type Config struct {
	Log      *logger.Config `toml:"log"`
	Monitor  monitor.Config `toml:"monitor"`
	Workload WorkloadConfig `toml:"workload"`
}

// WorkloadConfig controls the synthetic stat-producing workers the daemon
// runs to exercise cross-goroutine aggregation.
type WorkloadConfig struct {
	Workers        int            `toml:"workers"`
	UpdateInterval itoml.Duration `toml:"update-interval"`
}

// NewConfig returns an instance of Config with defaults.
func NewConfig() *Config {
	return &Config{
		Log:     logger.NewDefaultLogConfig(),
		Monitor: monitor.NewConfig(),
		Workload: WorkloadConfig{
			Workers:        DefaultWorkloadWorkers,
			UpdateInterval: itoml.Duration(DefaultWorkloadUpdateInterval),
		},
	}
}

// Validate validates that the configuration is acceptable.
func (c *Config) Validate() error {
	if err := c.Monitor.Validate(); err != nil {
		return err
	}
	if c.Workload.Workers < 0 {
		return errors.New("workload workers must not be negative")
	}
	if c.Workload.Workers > 0 && c.Workload.UpdateInterval <= 0 {
		return errors.New("workload update-interval must be positive")
	}
	return nil
}

// FromTomlFile loads the config from a TOML file.
func (c *Config) FromTomlFile(path string) error {
	bs, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config file")
	}
	if err := toml.Unmarshal(bs, c); err != nil {
		return errors.Wrap(err, "decode config file")
	}
	return nil
}
