package stats

import "time"

// Timeseries accumulates a sum and a count locally and publishes the
// requested subset of {Sum, Count, Avg, Rate} on aggregation. The cumulative
// totals live in the registry under "<name>.sum" and "<name>.count"; the
// local accumulator holds only the undrained increment since the previous
// aggregation, so same-named timeseries in different containers fold into
// one set of global counters.
type Timeseries struct {
	rg      registration
	exports exportSet

	sum   int64
	count int64

	// Values recorded since the last flush and the time of that flush,
	// used for the rate export.
	rateSum   int64
	lastFlush time.Time
}

// NewTimeseries returns a timeseries bound to c publishing the counters
// selected by exports. Kinds not requested produce no registry writes,
// except that Avg maintains "<name>.sum" and "<name>.count" as its
// registry-backed cumulative inputs.
func NewTimeseries(c *Container, name string, exports ...Export) *Timeseries {
	ts := &Timeseries{
		exports:   newExportSet(exports),
		lastFlush: time.Now(),
	}
	ts.rg.bind(c, name, ts)
	return ts
}

// AddValue records v: the local sum grows by v and the local count by one.
// No registry traffic occurs until the next aggregation.
func (ts *Timeseries) AddValue(v int64) {
	ts.rg.lk.Lock()
	ts.sum += v
	ts.count++
	ts.rateSum += v
	ts.rg.lk.Unlock()
}

// Move transfers the timeseries' slot, name, exports, and undrained
// accumulator state to a new instance, leaving ts unbound and inert.
func (ts *Timeseries) Move() *Timeseries {
	dst := &Timeseries{}
	dst.rg.adoptPolicy(&ts.rg)
	dst.rg.takeOver(&ts.rg, dst, func() { dst.transferFrom(ts) })
	return dst
}

// MoveFrom flushes and releases ts's current binding, then takes over src's
// slot, name, exports, and undrained accumulator state. Self-move is a
// no-op.
func (ts *Timeseries) MoveFrom(src *Timeseries) {
	if ts == src {
		return
	}
	ts.rg.detach(ts, ts.flushLocked)
	ts.rg.takeOver(&src.rg, ts, func() { ts.transferFrom(src) })
}

// Close flushes the undrained delta if the timeseries is still bound and
// releases the registration. Closing an orphaned or moved-from timeseries is
// a no-op; Close is idempotent.
func (ts *Timeseries) Close() {
	ts.rg.detach(ts, ts.flushLocked)
}

func (ts *Timeseries) drainInto(reg Registry) {
	ts.rg.lk.Lock()
	ts.flushLocked(reg)
	ts.rg.lk.Unlock()
}

func (ts *Timeseries) orphan(reg Registry) {
	ts.rg.lk.Lock()
	ts.flushLocked(reg)
	ts.rg.cont = nil
	ts.rg.slot = -1
	ts.rg.lk.Unlock()
}

// transferFrom copies the accumulator state and configuration from src and
// resets src. Caller holds src's stat lock via the move protocol.
func (ts *Timeseries) transferFrom(src *Timeseries) {
	ts.exports = src.exports
	ts.sum = src.sum
	ts.count = src.count
	ts.rateSum = src.rateSum
	ts.lastFlush = src.lastFlush
	src.sum, src.count, src.rateSum = 0, 0, 0
}

// flushLocked drains the local delta and republishes the requested derived
// counters. A timeseries with nothing recorded since the previous flush
// performs no registry writes at all. Caller holds the stat lock.
func (ts *Timeseries) flushLocked(reg Registry) {
	if ts.sum == 0 && ts.count == 0 && ts.rateSum == 0 {
		return
	}
	name := ts.rg.name
	if ts.exports.sum || ts.exports.avg {
		reg.Increment(name+".sum", ts.sum)
	}
	if ts.exports.count || ts.exports.avg {
		reg.Increment(name+".count", ts.count)
	}
	if ts.exports.avg {
		reg.Set(name+".avg", quotient(reg.Get(name+".sum"), reg.Get(name+".count")))
	}
	if ts.exports.rate {
		now := time.Now()
		if secs := now.Sub(ts.lastFlush).Seconds(); secs > 0 {
			reg.Set(name+".rate", int64(float64(ts.rateSum)/secs))
		}
		ts.lastFlush = now
	}
	ts.sum, ts.count, ts.rateSum = 0, 0, 0
}
