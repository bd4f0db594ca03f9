// Package toml adds support types for decoding human-readable values from
// TOML configuration files.
package toml

import "time"

// Duration is a TOML wrapper type for time.Duration, so intervals can be
// written as "10s" or "15m" in configuration files.
type Duration time.Duration

// String returns the duration in text form.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalText parses a TOML value such as "10s" into a duration.
func (d *Duration) UnmarshalText(text []byte) error {
	// An empty value keeps the default.
	if len(text) == 0 {
		return nil
	}
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText converts the duration to text for encoding.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
