package stats_test

import (
	"sync"
	"testing"

	"github.com/tlstats/tlstats/stats"
)

// fakeRegistry is a plain mutex-guarded registry that also counts writes, so
// tests can assert that aggregation with nothing to drain performs no
// registry traffic.
type fakeRegistry struct {
	mu     sync.Mutex
	values map[string]int64
	writes int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{values: make(map[string]int64)}
}

func (r *fakeRegistry) Get(key string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.values[key]
}

func (r *fakeRegistry) Increment(key string, delta int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] += delta
	r.writes++
}

func (r *fakeRegistry) Set(key string, value int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	r.writes++
}

func (r *fakeRegistry) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

func (r *fakeRegistry) has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.values[key]
	return ok
}

func (r *fakeRegistry) expect(t *testing.T, key string, want int64) {
	t.Helper()
	if got := r.Get(key); got != want {
		t.Fatalf("unexpected value for %q: got %d, want %d", key, got, want)
	}
}

// forEachPolicy runs fn under both lock policies. The registry results must
// be identical: Unguarded only removes locking, never behavior.
func forEachPolicy(t *testing.T, fn func(t *testing.T, policy stats.LockPolicy)) {
	t.Run("Guarded", func(t *testing.T) { fn(t, stats.Guarded) })
	t.Run("Unguarded", func(t *testing.T) { fn(t, stats.Unguarded) })
}

func TestMoveCounter(t *testing.T) {
	forEachPolicy(t, func(t *testing.T, policy stats.LockPolicy) {
		reg := newFakeRegistry()
		c := stats.NewContainer(reg, policy)

		ctr1 := stats.NewCounter(c, "foo")
		ctr1.Increment(1)

		// Move construction.
		ctr2 := ctr1.Move()
		ctr2.Increment(2)

		ctr3 := stats.NewCounter(c, "bar")
		ctr3.Increment(3)

		// Move assignment.
		ctr3.MoveFrom(ctr2)
		ctr3.Increment(4)

		ctr1.Close()
		ctr2.Close()
		ctr3.Close()
		c.Close()

		reg.expect(t, "foo", 7)
		reg.expect(t, "bar", 3)
	})
}

func TestMoveTimeseries(t *testing.T) {
	forEachPolicy(t, func(t *testing.T, policy stats.LockPolicy) {
		reg := newFakeRegistry()
		c := stats.NewContainer(reg, policy)

		ts1 := stats.NewTimeseries(c, "foo", stats.Sum, stats.Count)
		ts1.AddValue(1)

		// Move construction.
		ts2 := ts1.Move()
		ts2.AddValue(2)

		ts3 := stats.NewTimeseries(c, "bar", stats.Sum, stats.Count)
		ts3.AddValue(3)

		// Move assignment.
		ts3.MoveFrom(ts2)
		ts3.AddValue(4)

		ts1.Close()
		ts2.Close()
		ts3.Close()
		c.Close()

		reg.expect(t, "foo.count", 3)
		reg.expect(t, "foo.sum", 7)
		reg.expect(t, "bar.count", 1)
		reg.expect(t, "bar.sum", 3)
	})
}

func TestMoveHistogram(t *testing.T) {
	forEachPolicy(t, func(t *testing.T, policy stats.LockPolicy) {
		reg := newFakeRegistry()
		c := stats.NewContainer(reg, policy)

		hist1, err := stats.NewHistogram(c, "foo", 10, 0, 1000,
			stats.Sum, stats.Count, stats.Percentile(50))
		if err != nil {
			t.Fatal(err)
		}
		hist1.AddValue(15)

		// Move construction.
		hist2 := hist1.Move()
		hist2.AddValue(44)
		hist2.AddValue(75)

		hist3, err := stats.NewHistogram(c, "bar", 1, 20, 30,
			stats.Sum, stats.Count, stats.Percentile(50))
		if err != nil {
			t.Fatal(err)
		}
		hist3.AddValue(23)

		// Move assignment.
		hist3.MoveFrom(hist2)
		hist3.AddValue(46)

		hist1.Close()
		hist2.Close()
		hist3.Close()
		c.Close()

		reg.expect(t, "foo.count", 4)
		reg.expect(t, "foo.sum", 180)
		reg.expect(t, "foo.p50", 45)

		reg.expect(t, "bar.count", 1)
		reg.expect(t, "bar.sum", 23)
		reg.expect(t, "bar.p50", 23)
	})
}

func TestMoveWithInterleavedAggregate(t *testing.T) {
	forEachPolicy(t, func(t *testing.T, policy stats.LockPolicy) {
		reg := newFakeRegistry()
		c := stats.NewContainer(reg, policy)

		ctr1 := stats.NewCounter(c, "foo")
		ctr1.Increment(1)
		c.Aggregate()

		ctr2 := ctr1.Move()
		ctr2.Increment(2)
		c.Aggregate()

		ctr3 := stats.NewCounter(c, "bar")
		ctr3.Increment(3)
		ctr3.MoveFrom(ctr2)
		ctr3.Increment(4)
		c.Aggregate()

		ctr1.Close()
		ctr2.Close()
		ctr3.Close()
		c.Close()

		reg.expect(t, "foo", 7)
		reg.expect(t, "bar", 3)
	})
}

func TestSelfMoveIsANoop(t *testing.T) {
	reg := newFakeRegistry()
	c := stats.NewContainer(reg, stats.Guarded)

	ctr := stats.NewCounter(c, "foo")
	ctr.Increment(1)
	ctr.MoveFrom(ctr)
	ctr.Increment(2)
	ctr.Close()
	c.Close()

	reg.expect(t, "foo", 3)
}

func TestDestroyContainerBeforeStat(t *testing.T) {
	forEachPolicy(t, func(t *testing.T, policy stats.LockPolicy) {
		reg := newFakeRegistry()
		c := stats.NewContainer(reg, policy)

		ctr := stats.NewCounter(c, "foo")
		ctr.Increment(5)
		hist, err := stats.NewHistogram(c, "bar", 1, 20, 30,
			stats.Sum, stats.Count, stats.Percentile(50))
		if err != nil {
			t.Fatal(err)
		}
		hist.AddValue(25)

		// Closing the container flushes and orphans both stats.
		c.Close()
		reg.expect(t, "foo", 5)
		reg.expect(t, "bar.count", 1)

		// Orphaned stats accept updates but never drain them.
		writes := reg.writeCount()
		ctr.Increment(7)
		hist.AddValue(21)
		ctr.Close()
		hist.Close()
		c.Close()

		if got := reg.writeCount(); got != writes {
			t.Fatalf("orphaned stats wrote to the registry: %d writes, want %d", got, writes)
		}
		reg.expect(t, "foo", 5)
	})
}

func TestStatOnClosedContainerIsInert(t *testing.T) {
	reg := newFakeRegistry()
	c := stats.NewContainer(reg, stats.Guarded)
	c.Close()

	ctr := stats.NewCounter(c, "foo")
	ctr.Increment(3)
	c.Aggregate()
	ctr.Close()

	if writes := reg.writeCount(); writes != 0 {
		t.Fatalf("unexpected registry writes: %d", writes)
	}
}

func TestEmptyAggregateWritesNothing(t *testing.T) {
	forEachPolicy(t, func(t *testing.T, policy stats.LockPolicy) {
		reg := newFakeRegistry()
		c := stats.NewContainer(reg, policy)

		// No stats at all.
		c.Aggregate()
		if writes := reg.writeCount(); writes != 0 {
			t.Fatalf("aggregate of empty container wrote %d times", writes)
		}

		ctr := stats.NewCounter(c, "foo")
		ts := stats.NewTimeseries(c, "ts", stats.Sum, stats.Count, stats.Avg)
		hist, err := stats.NewHistogram(c, "hist", 10, 0, 100, stats.Count)
		if err != nil {
			t.Fatal(err)
		}

		ctr.Increment(2)
		ts.AddValue(4)
		hist.AddValue(9)
		c.Aggregate()

		// Everything is drained; a second aggregate must be a no-op.
		writes := reg.writeCount()
		before := reg.Get("foo")
		c.Aggregate()
		if got := reg.writeCount(); got != writes {
			t.Fatalf("idle aggregate wrote to the registry: %d writes, want %d", got, writes)
		}
		reg.expect(t, "foo", before)

		ctr.Close()
		ts.Close()
		hist.Close()
		c.Close()
		if got := reg.writeCount(); got != writes {
			t.Fatalf("closing drained stats wrote to the registry: %d writes, want %d", got, writes)
		}
	})
}

func TestCloseIsIdempotent(t *testing.T) {
	reg := newFakeRegistry()
	c := stats.NewContainer(reg, stats.Guarded)

	ctr := stats.NewCounter(c, "foo")
	ctr.Increment(1)
	ctr.Close()
	ctr.Close()
	c.Close()
	c.Close()

	reg.expect(t, "foo", 1)
	if writes := reg.writeCount(); writes != 1 {
		t.Fatalf("unexpected write count: %d", writes)
	}
}
