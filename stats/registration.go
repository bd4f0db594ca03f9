package stats

import "sync"

// tlStat is the container's view of a bound stat.
type tlStat interface {
	// drainInto flushes the stat's undrained delta into reg and resets it.
	// Called with the container lock held; takes the stat lock itself.
	drainInto(reg Registry)

	// orphan flushes like drainInto and then clears the stat's container
	// back-reference. Called by Container.Close with the container lock
	// held.
	orphan(reg Registry)
}

// registration binds one stat instance to at most one container slot. It is
// a pair of non-owning back-references (the slot entry in the container's
// live set and the container pointer here) kept consistent only through the
// register, hand-off, and deregister protocol below. Lock order is always
// container lock first, then stat lock.
type registration struct {
	lk   sync.Locker // guards the owning stat's accumulator and this struct
	pol  LockPolicy  // immutable after construction
	name string

	cont *Container // nil when unbound (orphaned or moved-from)
	slot int
}

// bind registers st with c during construction. A nil or already closed
// container leaves the stat unbound: updates are accepted and never drained.
func (r *registration) bind(c *Container, name string, st tlStat) {
	r.name = name
	r.slot = -1
	if c == nil {
		r.pol = Unguarded
		r.lk = nopLocker{}
		return
	}
	r.pol = c.policy
	r.lk = c.policy.newLocker()
	c.mu.Lock()
	if !c.closed {
		r.cont = c
		r.slot = c.registerLocked(st)
	}
	c.mu.Unlock()
}

// adoptPolicy equips a freshly constructed move destination with a locker of
// the same policy as the source, before the destination becomes reachable.
func (r *registration) adoptPolicy(src *registration) {
	r.pol = src.pol
	r.lk = r.pol.newLocker()
	r.slot = -1
}

// detach removes the stat from its container, first flushing its undrained
// delta through flush while both the container lock and the stat lock are
// held. Detaching an unbound stat is a no-op, so stats and containers may be
// closed in either order.
func (r *registration) detach(st tlStat, flush func(Registry)) {
	for {
		r.lk.Lock()
		cont := r.cont
		r.lk.Unlock()
		if cont == nil {
			return
		}
		// Re-check the binding once the container lock is held: a
		// concurrent Container.Close or move may have won the race.
		cont.mu.Lock()
		r.lk.Lock()
		if r.cont != cont {
			r.lk.Unlock()
			cont.mu.Unlock()
			continue
		}
		flush(cont.reg)
		cont.unregisterLocked(r.slot, st)
		r.cont = nil
		r.slot = -1
		r.lk.Unlock()
		cont.mu.Unlock()
		return
	}
}

// takeOver implements move: the destination assumes the source's slot, name,
// and undrained accumulator state in one step, so a concurrent Aggregate
// either drains the source before the hand-off or the destination after it,
// never both. transfer copies the accumulators and configuration from source
// to destination and resets the source; it runs with the source's stat lock
// (and, when the source is bound, the container lock) held. The destination
// must be unbound on entry.
func (r *registration) takeOver(src *registration, dst tlStat, transfer func()) {
	for {
		src.lk.Lock()
		cont := src.cont
		if cont == nil {
			// Unbound source: nothing registered to hand off.
			r.name = src.name
			transfer()
			src.lk.Unlock()
			return
		}
		src.lk.Unlock()
		cont.mu.Lock()
		src.lk.Lock()
		if src.cont != cont {
			src.lk.Unlock()
			cont.mu.Unlock()
			continue
		}
		r.name = src.name
		transfer()
		cont.slots[src.slot] = dst
		r.cont = cont
		r.slot = src.slot
		src.cont = nil
		src.slot = -1
		src.lk.Unlock()
		cont.mu.Unlock()
		return
	}
}
