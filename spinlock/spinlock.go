// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package spinlock

import (
	"runtime"
	"sync/atomic"
)

const (
	unheld uint32 = iota
	held
)

// Spinlock is a busy-wait mutual exclusion guard.  The zero value is an
// unheld spinlock ready for use.  A Spinlock must not be copied after
// first use.
//
// Waiters spin instead of sleeping, so holders must keep critical sections
// short and must never block while holding a spinlock.
type Spinlock struct {
	state uint32
}

// Acquire spins until the spinlock is taken, yielding the processor
// between attempts.
func (s *Spinlock) Acquire() {
	for !atomic.CompareAndSwapUint32(&s.state, unheld, held) {
		runtime.Gosched()
	}
}

// TryAcquire makes a single attempt to take the spinlock, returning
// true on success.
func (s *Spinlock) TryAcquire() bool {
	return atomic.CompareAndSwapUint32(&s.state, unheld, held)
}

// Release marks the spinlock unheld.  Releasing a spinlock that is not
// held panics.
func (s *Spinlock) Release() {
	if !atomic.CompareAndSwapUint32(&s.state, held, unheld) {
		panic("spinlock: release of unheld spinlock")
	}
}

// Held reports whether the spinlock is held by some caller.  It cannot
// distinguish the current goroutine from any other holder, so it is a
// weaker assertion than ownership verification.  It remains useful for
// preconditions of the form "a holder exists", as when a wait channel
// verifies that its guard is held before touching the queue.
func (s *Spinlock) Held() bool {
	return atomic.LoadUint32(&s.state) == held
}

// Cleanup verifies that the spinlock may be destroyed.  It panics if the
// spinlock is held.
func (s *Spinlock) Cleanup() {
	if atomic.LoadUint32(&s.state) == held {
		panic("spinlock: cleanup of held spinlock")
	}
}
