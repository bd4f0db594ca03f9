package stats

// Registry is the process-wide named counter store that stats drain into
// during aggregation. Implementations must make each operation individually
// atomic and safe for concurrent use from any goroutine. Absent keys read
// as 0.
type Registry interface {
	Get(key string) int64
	Increment(key string, delta int64)
	Set(key string, value int64)
}
