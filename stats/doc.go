/*
Package stats implements low-overhead thread-local statistics collection.

Each goroutine that records statistics owns a Container. Counters,
timeseries, and histograms are created bound to a container and accumulate
updates in purely local state, so the hot update path never touches the
process-wide registry. Aggregate drains every accumulated delta into the
registry under derived keys ("<name>", "<name>.sum", "<name>.count",
"<name>.avg", "<name>.rate", "<name>.p<NN>") and resets the local deltas.

Under the Guarded lock policy any goroutine may aggregate a container while
its owner keeps updating, moving, and closing stats bound to it. The
Unguarded policy removes all locking and is only correct when every update
and every aggregation of a given container happens on one goroutine.

Containers and stats may be closed in either order. Closing a container
flushes and orphans the stats still bound to it; an orphaned stat stays
valid, accepts further updates, and simply never drains them.
*/
package stats
