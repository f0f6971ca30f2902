// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package synch provides kernel-style blocking synchronization primitives: a
counting Semaphore, a mutual exclusion Lock with ownership tracking, and a
monitor-style condition variable with Mesa semantics.

All three are built on the same substrate: a busy-wait spinlock guarding
the primitive's state, and a named wait channel whose sleep operation
atomically enqueues the caller and releases that guard.  Enqueueing under
the guard is what makes the primitives immune to lost wakeups; there is no
window in which a waker can observe state that obligates a wakeup without
also observing the waiter in the queue.

Two properties are deliberate and shared by every primitive here:

  - Wakeups are hints.  A woken thread re-checks the condition it slept on
    and may sleep again.  No fairness or FIFO ordering is guaranteed, and a
    thread that never slept may overtake a woken one.

  - Blocking is uninterruptible.  Once a thread sleeps inside Acquire or
    Wait there is no timeout and no cancellation.

Contract violations, such as releasing an unheld lock or destroying a
primitive with sleeping waiters, are programming errors and panic.
Resource exhaustion, by contrast, is an ordinary error returned by the
Registry constructors.
*/
package synch
