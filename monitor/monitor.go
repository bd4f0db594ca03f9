// Package monitor periodically drains thread-local stat containers into the
// process-wide registry and exposes the registry to external monitoring
// systems over HTTP.
package monitor

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tlstats/tlstats/pkg/utils"
	"github.com/tlstats/tlstats/registry"
)

// Aggregator is anything that can drain accumulated thread-local deltas into
// the registry. *stats.Container implements it.
type Aggregator interface {
	Aggregate()
}

// Monitor drives periodic aggregation of registered containers. It is one
// aggregator among possibly many: any goroutine holding a container may also
// call Aggregate on it directly.
type Monitor struct {
	config Config

	mu      sync.Mutex
	targets map[string]Aggregator

	registry *registry.Registry

	wg   sync.WaitGroup
	done chan struct{}

	logger *zap.Logger
}

// New returns a monitor draining registered containers into reg.
func New(c Config, reg *registry.Registry) *Monitor {
	return &Monitor{
		config:   c,
		targets:  make(map[string]Aggregator),
		registry: reg,
		logger:   zap.NewNop(),
	}
}

// WithLogger sets the logger on the monitor.
func (m *Monitor) WithLogger(log *zap.Logger) {
	m.logger = log.With(zap.String("service", "monitor"))
}

// Registry returns the registry the monitor drains into.
func (m *Monitor) Registry() *registry.Registry {
	return m.registry
}

// Register adds a container to the aggregation set under the given name,
// replacing any previous container registered under that name.
func (m *Monitor) Register(name string, a Aggregator) {
	m.mu.Lock()
	m.targets[name] = a
	m.mu.Unlock()
}

// Deregister removes a container from the aggregation set. The caller
// remains responsible for closing the container, which flushes whatever the
// monitor has not drained yet.
func (m *Monitor) Deregister(name string) {
	m.mu.Lock()
	delete(m.targets, name)
	m.mu.Unlock()
}

// Open starts the aggregation loop.
func (m *Monitor) Open() error {
	if !m.config.Enabled || m.done != nil {
		return nil
	}

	m.logger.Info("Starting aggregation monitor",
		zap.Duration("aggregate_interval", time.Duration(m.config.AggregateInterval)))
	m.done = make(chan struct{})

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		utils.WithRecovery(m.run, nil)
	}()
	return nil
}

// Close stops the aggregation loop after one final pass.
func (m *Monitor) Close() error {
	if m.done == nil {
		return nil
	}

	m.logger.Info("Closing aggregation monitor")
	close(m.done)

	m.wg.Wait()
	m.done = nil
	return nil
}

// AggregateAll drains every registered container once.
func (m *Monitor) AggregateAll() {
	m.mu.Lock()
	targets := make([]Aggregator, 0, len(m.targets))
	for _, a := range m.targets {
		targets = append(targets, a)
	}
	m.mu.Unlock()

	for _, a := range targets {
		a.Aggregate()
	}
}

func (m *Monitor) run() {
	ticker := time.NewTicker(time.Duration(m.config.AggregateInterval))
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			// Final pass so shutdown does not strand deltas recorded since
			// the last tick.
			m.AggregateAll()
			return

		case <-ticker.C:
			m.AggregateAll()
			m.logger.Debug("Aggregated thread-local stats",
				zap.Int("registry_keys", m.registry.Len()))
		}
	}
}
