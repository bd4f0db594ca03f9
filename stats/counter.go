package stats

// Counter accumulates an integer delta locally and publishes it under
// "<name>" on aggregation.
type Counter struct {
	rg    registration
	delta int64
}

// NewCounter returns a counter bound to c.
func NewCounter(c *Container, name string) *Counter {
	ctr := &Counter{}
	ctr.rg.bind(c, name, ctr)
	return ctr
}

// Increment adds delta to the local accumulator. No registry traffic occurs
// until the next aggregation.
func (ctr *Counter) Increment(delta int64) {
	ctr.rg.lk.Lock()
	ctr.delta += delta
	ctr.rg.lk.Unlock()
}

// Move transfers the counter's slot, name, and undrained delta to a new
// instance, leaving ctr unbound and inert.
func (ctr *Counter) Move() *Counter {
	dst := &Counter{}
	dst.rg.adoptPolicy(&ctr.rg)
	dst.rg.takeOver(&ctr.rg, dst, func() {
		dst.delta = ctr.delta
		ctr.delta = 0
	})
	return dst
}

// MoveFrom flushes and releases ctr's current binding, then takes over src's
// slot, name, and undrained delta, leaving src unbound and inert. Self-move
// is a no-op.
func (ctr *Counter) MoveFrom(src *Counter) {
	if ctr == src {
		return
	}
	ctr.rg.detach(ctr, ctr.flushLocked)
	ctr.rg.takeOver(&src.rg, ctr, func() {
		ctr.delta = src.delta
		src.delta = 0
	})
}

// Close flushes the undrained delta if the counter is still bound and
// releases the registration. Closing an orphaned or moved-from counter is a
// no-op; Close is idempotent.
func (ctr *Counter) Close() {
	ctr.rg.detach(ctr, ctr.flushLocked)
}

func (ctr *Counter) drainInto(reg Registry) {
	ctr.rg.lk.Lock()
	ctr.flushLocked(reg)
	ctr.rg.lk.Unlock()
}

func (ctr *Counter) orphan(reg Registry) {
	ctr.rg.lk.Lock()
	ctr.flushLocked(reg)
	ctr.rg.cont = nil
	ctr.rg.slot = -1
	ctr.rg.lk.Unlock()
}

// flushLocked drains the local delta. Caller holds the stat lock.
func (ctr *Counter) flushLocked(reg Registry) {
	if ctr.delta == 0 {
		return
	}
	reg.Increment(ctr.rg.name, ctr.delta)
	ctr.delta = 0
}
