// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package synch

import (
	"github.com/xmidt-org/hypnos/kthread"
	"github.com/xmidt-org/hypnos/spinlock"
	"github.com/xmidt-org/hypnos/wchan"
)

// Cond is a monitor-style condition variable with Mesa semantics, used
// together with a Lock protecting some shared predicate.
//
// A signal is a hint that the predicate may now hold, not a guarantee:
// between the wakeup and the waiter re-acquiring the lock, another thread
// may run and falsify the predicate again.  Callers always wait in a
// loop:
//
//	l.Acquire(self)
//	for !predicate() {
//		cv.Wait(self, l)
//	}
//	// predicate holds, l is held
//	l.Release(self)
//
// The condition variable's internal guard is distinct from the caller's
// Lock.  Wait takes that guard before releasing the Lock, so a signaler
// that acquires the Lock after the waiter released it cannot signal until
// the waiter is enqueued: no signal is lost between the release and the
// sleep.
type Cond struct {
	name     string
	guard    spinlock.Spinlock
	wc       *wchan.Wchan
	measures CondMeasures
	release  func()
}

// CondOption alters a Cond under construction.
type CondOption func(*Cond)

// WithCondMeasures sets the metrics recorded by the condition variable.
// Any measure left unset discards its data.
func WithCondMeasures(m CondMeasures) CondOption {
	return func(c *Cond) {
		c.measures = m
	}
}

// NewCond constructs a Cond.  The name is diagnostic only and is retained
// for the lifetime of the condition variable.
func NewCond(name string, opts ...CondOption) *Cond {
	c := &Cond{
		name: name,
		wc:   wchan.New(name),
	}

	for _, o := range opts {
		o(c)
	}

	c.measures = c.measures.withDefaults()
	return c
}

// Name returns the diagnostic name supplied at construction.
func (c *Cond) Name() string {
	return c.name
}

// Wait atomically releases l and sleeps until a signal or broadcast, then
// re-acquires l before returning.  The caller must hold l; this is
// enforced by the Lock's own release assertions rather than re-verified
// here.
//
// On return the predicate must be re-checked: Wait returning means the
// condition may hold, not that it does.  Wait panics in interrupt
// context.
func (c *Cond) Wait(self *kthread.Thread, l *Lock) {
	mustNotBlockInInterrupt(self, "cond", c.name)

	c.guard.Acquire()
	l.Release(self)
	c.measures.Waits.Add(1.0)
	c.wc.Sleep(&c.guard)
	c.guard.Release()

	l.Acquire(self)
}

// Signal wakes one waiter, if any are sleeping.  Signaling with no
// waiters is a no-op, not an error.
//
// The lock is accepted for symmetry with Wait and is not otherwise used;
// callers conventionally hold it while mutating the predicate.
func (c *Cond) Signal(l *Lock) {
	c.guard.Acquire()
	c.measures.Signals.Add(1.0)
	c.wc.WakeOne(&c.guard)
	c.guard.Release()
}

// Broadcast wakes every waiter currently sleeping.  Waiters that begin
// waiting afterward are not woken.
func (c *Cond) Broadcast(l *Lock) {
	c.guard.Acquire()
	c.measures.Broadcasts.Add(1.0)
	c.wc.WakeAll(&c.guard)
	c.guard.Release()
}

// Destroy verifies the condition variable is quiescent and tears it down.
// It panics if any waiters are sleeping.  The caller must guarantee no
// further use.
func (c *Cond) Destroy() {
	c.guard.Cleanup()
	c.wc.Destroy()

	if f := c.release; f != nil {
		c.release = nil
		f()
	}
}
