package logger

import (
	"github.com/tlstats/tlstats/internal/log"
)

const (
	// DefaultLogFormat is the default format of the log.
	DefaultLogFormat = "console"
	// DefaultLogLevel is the default level of the log.
	DefaultLogLevel = "info"
)

// Config wraps the logger construction config for TOML decoding under the
// [log] section.
type Config struct {
	log.Config
}

// NewDefaultLogConfig returns a config logging to stderr at info level.
func NewDefaultLogConfig() *Config {
	return &Config{
		Config: log.Config{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
