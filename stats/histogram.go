package stats

import (
	"strconv"

	"github.com/pkg/errors"
)

// Histogram buckets recorded values into fixed-width buckets over [min, max)
// plus implicit underflow and overflow buckets, accumulating per-bucket
// deltas locally. Aggregation folds the deltas into cumulative bucket
// counters in the registry under "<name>.bucket.<lowerEdge>" (with
// ".bucket.under" and ".bucket.over" for the implicit buckets) and
// republishes the requested derived counters from the cumulative
// distribution, so same-named histograms in different containers share one
// distribution.
//
// Percentile estimates use linear interpolation within the bucket holding
// the target rank; the underflow bucket reports min and the overflow bucket
// reports max.
type Histogram struct {
	rg      registration
	exports exportSet

	width int64
	min   int64
	max   int64

	// buckets[0] is underflow, buckets[len-1] is overflow, and
	// buckets[1+i] covers [min+i*width, min+(i+1)*width).
	buckets []int64
	sum     int64
	count   int64
}

// NewHistogram returns a histogram bound to c with ceil((max-min)/width)
// equal-width buckets over [min, max), publishing the counters selected by
// exports (Sum, Count, Avg, and Percentile values). A non-positive width or
// max <= min is a construction error.
func NewHistogram(c *Container, name string, width, min, max int64, exports ...Export) (*Histogram, error) {
	if width <= 0 {
		return nil, errors.Errorf("histogram %q: bucket width must be positive, got %d", name, width)
	}
	if max <= min {
		return nil, errors.Errorf("histogram %q: max %d must be greater than min %d", name, max, min)
	}
	n := (max - min + width - 1) / width
	h := &Histogram{
		exports: newExportSet(exports),
		width:   width,
		min:     min,
		max:     max,
		buckets: make([]int64, n+2),
	}
	h.rg.bind(c, name, h)
	return h, nil
}

// AddValue records v into the local count of the bucket containing it;
// values outside [min, max) land in the underflow or overflow bucket. No
// registry traffic occurs until the next aggregation.
func (h *Histogram) AddValue(v int64) {
	h.rg.lk.Lock()
	h.buckets[h.bucketIndex(v)]++
	h.sum += v
	h.count++
	h.rg.lk.Unlock()
}

// Move transfers the histogram's slot, name, configuration, and undrained
// accumulator state to a new instance, leaving h unbound and inert.
func (h *Histogram) Move() *Histogram {
	dst := &Histogram{}
	dst.rg.adoptPolicy(&h.rg)
	dst.rg.takeOver(&h.rg, dst, func() { dst.transferFrom(h) })
	return dst
}

// MoveFrom flushes and releases h's current binding, then takes over src's
// slot, name, configuration, and undrained accumulator state. Self-move is
// a no-op.
func (h *Histogram) MoveFrom(src *Histogram) {
	if h == src {
		return
	}
	h.rg.detach(h, h.flushLocked)
	h.rg.takeOver(&src.rg, h, func() { h.transferFrom(src) })
}

// Close flushes the undrained deltas if the histogram is still bound and
// releases the registration. Closing an orphaned or moved-from histogram is
// a no-op; Close is idempotent.
func (h *Histogram) Close() {
	h.rg.detach(h, h.flushLocked)
}

func (h *Histogram) drainInto(reg Registry) {
	h.rg.lk.Lock()
	h.flushLocked(reg)
	h.rg.lk.Unlock()
}

func (h *Histogram) orphan(reg Registry) {
	h.rg.lk.Lock()
	h.flushLocked(reg)
	h.rg.cont = nil
	h.rg.slot = -1
	h.rg.lk.Unlock()
}

// transferFrom takes over the accumulator state and configuration from src,
// leaving src with an empty bucket array of its own so later (inert) updates
// stay in bounds. Caller holds src's stat lock via the move protocol.
func (h *Histogram) transferFrom(src *Histogram) {
	h.exports = src.exports
	h.width, h.min, h.max = src.width, src.min, src.max
	h.buckets = src.buckets
	h.sum, h.count = src.sum, src.count
	src.buckets = make([]int64, len(src.buckets))
	src.sum, src.count = 0, 0
}

func (h *Histogram) bucketIndex(v int64) int {
	switch {
	case v < h.min:
		return 0
	case v >= h.max:
		return len(h.buckets) - 1
	default:
		return 1 + int((v-h.min)/h.width)
	}
}

func (h *Histogram) bucketKey(i int) string {
	switch i {
	case 0:
		return h.rg.name + ".bucket.under"
	case len(h.buckets) - 1:
		return h.rg.name + ".bucket.over"
	default:
		return h.rg.name + ".bucket." + strconv.FormatInt(h.min+int64(i-1)*h.width, 10)
	}
}

// flushLocked drains the local bucket deltas into the cumulative
// distribution and republishes the requested derived counters. A histogram
// with nothing recorded since the previous flush performs no registry writes
// at all. Caller holds the stat lock.
func (h *Histogram) flushLocked(reg Registry) {
	if h.count == 0 {
		return
	}
	name := h.rg.name
	for i, d := range h.buckets {
		if d != 0 {
			reg.Increment(h.bucketKey(i), d)
			h.buckets[i] = 0
		}
	}
	if h.exports.sum || h.exports.avg {
		reg.Increment(name+".sum", h.sum)
	}
	if h.exports.count || h.exports.avg {
		reg.Increment(name+".count", h.count)
	}
	h.sum, h.count = 0, 0
	if h.exports.avg {
		reg.Set(name+".avg", quotient(reg.Get(name+".sum"), reg.Get(name+".count")))
	}
	if len(h.exports.percentiles) > 0 {
		counts := make([]int64, len(h.buckets))
		var total int64
		for i := range counts {
			counts[i] = reg.Get(h.bucketKey(i))
			total += counts[i]
		}
		for _, p := range h.exports.percentiles {
			reg.Set(percentileKey(name, p), h.estimate(counts, total, p))
		}
	}
}

// estimate walks the cumulative distribution until the running total reaches
// p/100 of the total count and interpolates linearly within that bucket.
// A zero total yields 0 rather than a division fault.
func (h *Histogram) estimate(counts []int64, total int64, p int) int64 {
	if total == 0 {
		return 0
	}
	target := float64(p) / 100 * float64(total)
	var cum int64
	for i, n := range counts {
		if n == 0 {
			continue
		}
		if float64(cum)+float64(n) >= target {
			switch i {
			case 0:
				return h.min
			case len(counts) - 1:
				return h.max
			}
			low := h.min + int64(i-1)*h.width
			high := low + h.width
			if high > h.max {
				high = h.max
			}
			return low + int64(float64(high-low)*(target-float64(cum))/float64(n))
		}
		cum += n
	}
	return h.max
}
