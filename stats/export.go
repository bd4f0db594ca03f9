package stats

import "fmt"

// Export selects a derived counter a stat publishes during aggregation.
// Timeseries accept Sum, Count, Avg, and Rate; histograms accept Sum,
// Count, Avg, and Percentile values.
type Export struct {
	op  exportOp
	pct int
}

type exportOp int

const (
	opSum exportOp = iota + 1
	opCount
	opAvg
	opRate
	opPercentile
)

var (
	// Sum publishes the cumulative sum under "<name>.sum".
	Sum = Export{op: opSum}
	// Count publishes the cumulative count under "<name>.count".
	Count = Export{op: opCount}
	// Avg publishes cumulative sum divided by cumulative count under
	// "<name>.avg".
	Avg = Export{op: opAvg}
	// Rate publishes the per-second rate of values recorded since the
	// previous aggregation under "<name>.rate".
	Rate = Export{op: opRate}
)

// Percentile requests publication of the p'th percentile estimate of a
// histogram under "<name>.p<p>".
func Percentile(p int) Export { return Export{op: opPercentile, pct: p} }

// exportSet is the decoded form of an export list.
type exportSet struct {
	sum, count, avg, rate bool

	percentiles []int
}

func newExportSet(exports []Export) exportSet {
	var s exportSet
	for _, e := range exports {
		switch e.op {
		case opSum:
			s.sum = true
		case opCount:
			s.count = true
		case opAvg:
			s.avg = true
		case opRate:
			s.rate = true
		case opPercentile:
			s.percentiles = append(s.percentiles, e.pct)
		}
	}
	return s
}

func percentileKey(name string, p int) string {
	return fmt.Sprintf("%s.p%d", name, p)
}

// quotient returns num/den truncated toward zero, or 0 when den is 0.
func quotient(num, den int64) int64 {
	if den == 0 {
		return 0
	}
	return num / den
}
