package stats

import "sync"

// Container owns the live set of stats created against it, typically one
// container per goroutine. Updates to bound stats touch only local
// accumulators; Aggregate drains every accumulated delta into the registry.
// Under the Guarded policy any goroutine may call Aggregate concurrently
// with the owner updating, moving, or closing stats bound to the container.
type Container struct {
	mu     sync.Locker
	policy LockPolicy
	reg    Registry

	// Arena-style slot table: indices handed to stats stay stable for the
	// stat's binding lifetime, and freed slots are recycled. nil entries
	// are free.
	slots []tlStat
	free  []int

	closed bool
}

// NewContainer returns an empty container draining into reg under the given
// lock policy. No registry traffic occurs until the first Aggregate.
func NewContainer(reg Registry, policy LockPolicy) *Container {
	return &Container{
		mu:     policy.newLocker(),
		policy: policy,
		reg:    reg,
	}
}

// registerLocked adds st to the live set and returns its slot index.
// Caller holds c.mu.
func (c *Container) registerLocked(st tlStat) int {
	if n := len(c.free); n > 0 {
		slot := c.free[n-1]
		c.free = c.free[:n-1]
		c.slots[slot] = st
		return slot
	}
	c.slots = append(c.slots, st)
	return len(c.slots) - 1
}

// unregisterLocked frees the slot if st still holds it. A slot that was
// already cleared, handed off to another stat, or dropped by Close is left
// alone. Caller holds c.mu.
func (c *Container) unregisterLocked(slot int, st tlStat) {
	if c.closed || slot < 0 || slot >= len(c.slots) || c.slots[slot] != st {
		return
	}
	c.slots[slot] = nil
	c.free = append(c.free, slot)
}

// Aggregate drains every live stat's undrained delta into the registry and
// republishes the derived counters each stat exports. Iteration order is
// unspecified. A stat registered or removed while an Aggregate is running on
// another goroutine may or may not be visited by that call; its delta is
// picked up by a later call or by its final flush on Close.
func (c *Container) Aggregate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for _, st := range c.slots {
		if st != nil {
			st.drainInto(c.reg)
		}
	}
}

// Close flushes and orphans every stat still bound to the container.
// Orphaned stats remain valid: further updates are accepted and silently
// dropped, and closing them later is a no-op. Close is idempotent and does
// not require cooperation from the goroutine that owns the stats.
func (c *Container) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for _, st := range c.slots {
		if st != nil {
			st.orphan(c.reg)
		}
	}
	c.closed = true
	c.slots = nil
	c.free = nil
}
