// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package synch

import (
	"fmt"

	"github.com/xmidt-org/hypnos/clock"
	"github.com/xmidt-org/hypnos/kthread"
	"github.com/xmidt-org/hypnos/spinlock"
	"github.com/xmidt-org/hypnos/wchan"
)

// Lock is a sleeping mutual exclusion primitive with ownership tracking.
// Unlike a semaphore initialized to one, a Lock knows who holds it: a
// recorded owner acquiring again panics instead of deadlocking, and a
// release by anyone other than the recorded owner panics.
//
// Ownership bookkeeping is gated on the readiness of the lock's thread
// system.  That flag is consulted exactly once per acquisition, at the
// moment the owner is recorded; every later check derives from the
// recorded owner.  While the system is not ready, or when the acquirer
// supplies no identity, the owner stays nil and the checks are inert.
//
// No fairness is guaranteed: a thread that never slept may take the lock
// ahead of a woken waiter.
type Lock struct {
	name     string
	held     bool
	owner    *kthread.Thread
	guard    spinlock.Spinlock
	wc       *wchan.Wchan
	threads  *kthread.System
	clock    clock.Interface
	measures LockMeasures
	release  func()
}

// LockOption alters a Lock under construction.
type LockOption func(*Lock)

// WithLockThreads sets the thread system whose readiness gates ownership
// bookkeeping.  By default, kthread.Default() is used.
func WithLockThreads(sys *kthread.System) LockOption {
	return func(l *Lock) {
		if sys != nil {
			l.threads = sys
		}
	}
}

// WithLockClock sets the clock used to observe contended wait durations.
// By default, the system clock is used.
func WithLockClock(c clock.Interface) LockOption {
	return func(l *Lock) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithLockMeasures sets the metrics recorded by the lock.  Any measure
// left unset discards its data.
func WithLockMeasures(m LockMeasures) LockOption {
	return func(l *Lock) {
		l.measures = m
	}
}

// NewLock constructs an unheld Lock.  The name is diagnostic only and is
// retained for the lifetime of the lock.
func NewLock(name string, opts ...LockOption) *Lock {
	l := &Lock{
		name:    name,
		wc:      wchan.New(name),
		threads: kthread.Default(),
		clock:   clock.System(),
	}

	for _, o := range opts {
		o(l)
	}

	l.measures = l.measures.withDefaults()
	return l
}

// Name returns the diagnostic name supplied at construction.
func (l *Lock) Name() string {
	return l.name
}

// Acquire takes the lock, sleeping while another thread holds it.  A
// wakeup is a hint: the woken thread re-checks and may sleep again if
// another acquirer took the lock first.
//
// When the thread system is ready, self is recorded as the owner.  An
// acquire by the already-recorded owner panics rather than deadlocking.
// Acquire panics in interrupt context.  self may be nil for callers
// without thread identity, in which case no owner is recorded.
func (l *Lock) Acquire(self *kthread.Thread) {
	mustNotBlockInInterrupt(self, "lock", l.name)

	l.guard.Acquire()
	if self != nil && l.owner == self {
		l.guard.Release()
		panic(fmt.Sprintf("synch: lock %q already held by %s", l.name, self.Name()))
	}

	if l.held {
		l.measures.Contended.Add(1.0)
		start := l.clock.Now()

		for l.held {
			l.wc.Sleep(&l.guard)
		}

		l.measures.WaitSeconds.Observe(l.clock.Now().Sub(start).Seconds())
	}

	l.held = true
	if l.threads.Ready() {
		l.owner = self
	} else {
		l.owner = nil
	}

	l.measures.Acquires.Add(1.0)
	l.guard.Release()
}

// Release frees the lock and wakes one sleeping acquirer, if any.
//
// Releasing an unheld lock panics, even while ownership bookkeeping is
// suspended.  When an owner is on record, a release by any other caller
// panics, including a caller with no identity.
func (l *Lock) Release(self *kthread.Thread) {
	l.guard.Acquire()
	if !l.held {
		l.guard.Release()
		panic(fmt.Sprintf("synch: release of unheld lock %q", l.name))
	}

	if l.owner != nil && l.owner != self {
		l.guard.Release()
		panic(fmt.Sprintf("synch: lock %q released by a thread that does not hold it", l.name))
	}

	l.held = false
	l.owner = nil
	l.measures.Releases.Add(1.0)
	l.wc.WakeOne(&l.guard)
	l.guard.Release()
}

// IsHeldBy reports whether self is the recorded owner of the lock.  It is
// false whenever no owner is on record, including while bookkeeping is
// suspended during bootstrap, and always false for a nil self.  It never
// reports a spurious true.
func (l *Lock) IsHeldBy(self *kthread.Thread) bool {
	l.guard.Acquire()
	defer l.guard.Release()
	return l.owner != nil && l.owner == self
}

// Destroy verifies the lock is quiescent and tears it down.  It panics if
// the lock is held or any acquirers are sleeping.  The caller must
// guarantee no further use.
func (l *Lock) Destroy() {
	l.guard.Acquire()
	held := l.held
	l.guard.Release()

	if held {
		panic(fmt.Sprintf("synch: destroy of held lock %q", l.name))
	}

	l.guard.Cleanup()
	l.wc.Destroy()

	if f := l.release; f != nil {
		l.release = nil
		f()
	}
}
