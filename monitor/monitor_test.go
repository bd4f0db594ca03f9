package monitor_test

import (
	"testing"
	"time"

	"github.com/tlstats/tlstats/monitor"
	"github.com/tlstats/tlstats/pkg/toml"
	"github.com/tlstats/tlstats/registry"
	"github.com/tlstats/tlstats/stats"
)

func TestMonitor_PeriodicAggregation(t *testing.T) {
	reg := registry.New()

	cfg := monitor.NewConfig()
	cfg.AggregateInterval = toml.Duration(time.Millisecond)
	m := monitor.New(cfg, reg)

	c := stats.NewContainer(reg, stats.Guarded)
	m.Register("worker", c)

	ctr := stats.NewCounter(c, "ticks")
	ctr.Increment(42)

	if err := m.Open(); err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	deadline := time.Now().Add(time.Second)
	for reg.Get("ticks") != 42 {
		if time.Now().After(deadline) {
			t.Fatalf("delta was not drained: ticks=%d", reg.Get("ticks"))
		}
		time.Sleep(time.Millisecond)
	}

	ctr.Close()
	c.Close()
}

func TestMonitor_CloseRunsFinalPass(t *testing.T) {
	reg := registry.New()

	cfg := monitor.NewConfig()
	cfg.AggregateInterval = toml.Duration(time.Hour) // never ticks during the test
	m := monitor.New(cfg, reg)

	c := stats.NewContainer(reg, stats.Guarded)
	m.Register("worker", c)
	ctr := stats.NewCounter(c, "pending")
	ctr.Increment(7)

	if err := m.Open(); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}

	if v := reg.Get("pending"); v != 7 {
		t.Fatalf("final pass did not drain: pending=%d", v)
	}

	ctr.Close()
	c.Close()
}

func TestMonitor_DeregisterStopsDraining(t *testing.T) {
	reg := registry.New()

	cfg := monitor.NewConfig()
	cfg.AggregateInterval = toml.Duration(time.Hour)
	m := monitor.New(cfg, reg)

	c := stats.NewContainer(reg, stats.Guarded)
	m.Register("worker", c)
	m.Deregister("worker")

	ctr := stats.NewCounter(c, "orphan")
	ctr.Increment(1)

	if err := m.Open(); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}

	if _, ok := reg.Lookup("orphan"); ok {
		t.Fatal("deregistered container was drained")
	}

	ctr.Close()
	c.Close()
}

func TestMonitor_DisabledOpenIsNoop(t *testing.T) {
	cfg := monitor.NewConfig()
	cfg.Enabled = false
	m := monitor.New(cfg, registry.New())

	if err := m.Open(); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
}
