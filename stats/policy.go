package stats

import "sync"

// A LockPolicy supplies the mutual exclusion strategy used by a container
// and every stat bound to it. The policy is fixed when the container is
// created; mixing policies within one container is not supported.
//
// Guarded must be used whenever Aggregate can run on a goroutine other than
// the one updating the stats. Unguarded is a zero-cost pass-through whose
// correctness depends on the caller keeping all updates and all aggregation
// of the container on a single goroutine.
type LockPolicy interface {
	newLocker() sync.Locker
}

// Guarded protects each container and each stat with its own mutex.
var Guarded LockPolicy = guardedPolicy{}

// Unguarded performs no locking at all.
var Unguarded LockPolicy = unguardedPolicy{}

type guardedPolicy struct{}

func (guardedPolicy) newLocker() sync.Locker { return &sync.Mutex{} }

type unguardedPolicy struct{}

func (unguardedPolicy) newLocker() sync.Locker { return nopLocker{} }

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}
