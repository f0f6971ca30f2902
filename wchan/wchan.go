// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package wchan

import (
	"fmt"

	"github.com/gammazero/deque"
	"github.com/xmidt-org/hypnos/spinlock"
)

// waiter is a single sleeping caller.  Waking closes wakeup, so the token
// persists whether the wake lands before or after the sleeper parks.
type waiter struct {
	wakeup chan struct{}
}

// Wchan is a named wait channel: a queue of sleeping callers protected by
// a caller-supplied spinlock.  The same guard must cover the owning
// primitive's state, so that the decision to sleep and the enqueue happen
// under one lock and no wakeup can slip between them.
//
// Wakeup order is unspecified.  The queue happens to be FIFO internally,
// but callers must not rely on it: a caller that never slept may overtake
// a woken waiter.
type Wchan struct {
	name string
	q    deque.Deque[*waiter]
}

// New constructs a Wchan.  The name is diagnostic only, appearing in panic
// messages, and is retained for the lifetime of the channel.
func New(name string) *Wchan {
	return &Wchan{name: name}
}

// Name returns the diagnostic name supplied to New.
func (w *Wchan) Name() string {
	return w.name
}

func (w *Wchan) mustGuard(guard *spinlock.Spinlock, op string) {
	if !guard.Held() {
		panic(fmt.Sprintf("wchan: %s on %q without the guard held", op, w.name))
	}
}

// Sleep atomically enqueues the caller and releases guard, then sleeps
// until woken by WakeOne or WakeAll.  The guard is re-acquired before
// Sleep returns.
//
// The caller must hold guard, and the same guard must protect every
// operation on this Wchan.  Sleep is uninterruptible: there is no timeout
// and no cancellation.
func (w *Wchan) Sleep(guard *spinlock.Spinlock) {
	w.mustGuard(guard, "sleep")

	wt := &waiter{wakeup: make(chan struct{})}
	w.q.PushBack(wt)
	guard.Release()

	<-wt.wakeup

	guard.Acquire()
}

// WakeOne wakes a single waiter, if any are sleeping.  The caller must
// hold guard.
func (w *Wchan) WakeOne(guard *spinlock.Spinlock) {
	w.mustGuard(guard, "wake one")

	if w.q.Len() > 0 {
		close(w.q.PopFront().wakeup)
	}
}

// WakeAll wakes every waiter currently sleeping.  Callers that sleep
// after the queue is drained are not woken.  The caller must hold guard.
func (w *Wchan) WakeAll(guard *spinlock.Spinlock) {
	w.mustGuard(guard, "wake all")

	for w.q.Len() > 0 {
		close(w.q.PopFront().wakeup)
	}
}

// Empty reports whether no callers are sleeping.  The caller must hold
// guard.
func (w *Wchan) Empty(guard *spinlock.Spinlock) bool {
	return w.Waiters(guard) == 0
}

// Waiters returns the number of sleeping callers.  The caller must hold
// guard.
func (w *Wchan) Waiters(guard *spinlock.Spinlock) int {
	w.mustGuard(guard, "waiters check")
	return w.q.Len()
}

// Destroy verifies that the wait channel may be discarded.  It panics if
// any waiters are sleeping.  The caller must guarantee the channel is
// quiescent; no guard is taken.
func (w *Wchan) Destroy() {
	if w.q.Len() != 0 {
		panic(fmt.Sprintf("wchan: destroy of %q with sleeping waiters", w.name))
	}
}
