package monitor

import (
	"os"
	"runtime"
	"time"
)

var startTime time.Time

func init() {
	startTime = time.Now().UTC()
}

// diagnosticsProvider supplies one named row of process diagnostics for the
// /diagnostics endpoint.
type diagnosticsProvider interface {
	Diagnostics() (map[string]interface{}, error)
}

// system captures system-level diagnostics.
type system struct{}

func (s *system) Diagnostics() (map[string]interface{}, error) {
	currentTime := time.Now().UTC()
	return map[string]interface{}{
		"PID":         os.Getpid(),
		"currentTime": currentTime,
		"started":     startTime,
		"uptime":      currentTime.Sub(startTime).String(),
	}, nil
}

// goRuntime captures Go runtime diagnostics.
type goRuntime struct{}

func (g *goRuntime) Diagnostics() (map[string]interface{}, error) {
	return map[string]interface{}{
		"GOARCH":     runtime.GOARCH,
		"GOOS":       runtime.GOOS,
		"GOMAXPROCS": runtime.GOMAXPROCS(-1),
		"version":    runtime.Version(),
	}, nil
}

// network captures network diagnostics.
type network struct{}

func (n *network) Diagnostics() (map[string]interface{}, error) {
	h, err := os.Hostname()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"hostname": h,
	}, nil
}

func diagnosticsProviders() map[string]diagnosticsProvider {
	return map[string]diagnosticsProvider{
		"system":  &system{},
		"runtime": &goRuntime{},
		"network": &network{},
	}
}
