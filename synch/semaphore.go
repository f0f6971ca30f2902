// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package synch

import (
	"fmt"

	"github.com/xmidt-org/hypnos/kthread"
	"github.com/xmidt-org/hypnos/spinlock"
	"github.com/xmidt-org/hypnos/wchan"
)

// Semaphore is a counting semaphore.  Acquire consumes one unit, sleeping
// until a unit is available; Release supplies one unit and never blocks.
//
// No fairness is guaranteed.  A thread that never slept may consume a unit
// ahead of a woken waiter, in which case the waiter re-checks the count
// and sleeps again.
type Semaphore struct {
	name     string
	count    uint
	guard    spinlock.Spinlock
	wc       *wchan.Wchan
	measures SemaphoreMeasures
	release  func()
}

// SemaphoreOption alters a Semaphore under construction.
type SemaphoreOption func(*Semaphore)

// WithSemaphoreMeasures sets the metrics recorded by the semaphore.  Any
// measure left unset discards its data.
func WithSemaphoreMeasures(m SemaphoreMeasures) SemaphoreOption {
	return func(s *Semaphore) {
		s.measures = m
	}
}

// NewSemaphore constructs a Semaphore with the given initial count.  Any
// count, including zero, is legal.  The name is diagnostic only and is
// retained for the lifetime of the semaphore.
func NewSemaphore(name string, count uint, opts ...SemaphoreOption) *Semaphore {
	s := &Semaphore{
		name:  name,
		count: count,
		wc:    wchan.New(name),
	}

	for _, o := range opts {
		o(s)
	}

	s.measures = s.measures.withDefaults()
	s.measures.Count.Set(float64(count))
	return s
}

// Name returns the diagnostic name supplied at construction.
func (s *Semaphore) Name() string {
	return s.name
}

// Count returns the instantaneous count.  The value is advisory: it may
// be stale the moment it is returned.
func (s *Semaphore) Count() uint {
	s.guard.Acquire()
	defer s.guard.Release()
	return s.count
}

// Acquire consumes one unit, sleeping while the count is zero.  A wakeup
// is a hint: the woken thread re-checks the count and may sleep again if
// another acquirer consumed the unit first.
//
// Acquire panics when called in interrupt context.  self may be nil for
// callers without thread identity.
func (s *Semaphore) Acquire(self *kthread.Thread) {
	mustNotBlockInInterrupt(self, "semaphore", s.name)

	s.guard.Acquire()
	for s.count == 0 {
		s.measures.Sleeps.Add(1.0)
		s.wc.Sleep(&s.guard)
	}

	s.count--
	s.measures.Acquires.Add(1.0)
	s.measures.Count.Set(float64(s.count))
	s.guard.Release()
}

// Release supplies one unit and wakes one sleeping acquirer, if any.
// Release never sleeps and is legal in interrupt context.
//
// Supplying so many units that the count wraps around panics.
func (s *Semaphore) Release() {
	s.guard.Acquire()
	s.count++
	if s.count == 0 {
		s.guard.Release()
		panic(fmt.Sprintf("synch: count overflow on semaphore %q", s.name))
	}

	s.measures.Releases.Add(1.0)
	s.measures.Count.Set(float64(s.count))
	s.wc.WakeOne(&s.guard)
	s.guard.Release()
}

// Destroy verifies the semaphore is quiescent and tears it down.  It
// panics if the guard is held or any acquirers are sleeping.  The caller
// must guarantee no further use.
func (s *Semaphore) Destroy() {
	s.guard.Cleanup()
	s.wc.Destroy()

	if f := s.release; f != nil {
		s.release = nil
		f()
	}
}
