// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package kthread

import (
	"sync/atomic"

	"github.com/segmentio/ksuid"
)

func init() {
	ksuid.SetRand(ksuid.FastRander)
}

// Thread is an identity handle for a goroutine spawned through a System.
// Primitives compare Thread pointers to verify ownership; the handle
// carries no scheduling state of its own and remains valid after the
// goroutine it was bound to returns.
type Thread struct {
	id        string
	name      string
	interrupt int32
}

func newThread(name string) *Thread {
	return &Thread{
		id:   ksuid.New().String(),
		name: name,
	}
}

// ID returns the unique identifier assigned when the handle was created.
func (t *Thread) ID() string {
	return t.id
}

// Name returns the diagnostic name supplied to Fork or Adopt.
func (t *Thread) Name() string {
	return t.name
}

// InInterrupt reports whether the thread is executing inside an Interrupt
// region.  Blocking primitives consult this to reject sleeping in
// interrupt context.
func (t *Thread) InInterrupt() bool {
	return atomic.LoadInt32(&t.interrupt) > 0
}

// Interrupt runs fn with the thread marked as executing in interrupt
// context.  Regions nest.  While inside fn, any operation that can sleep
// panics; operations that never sleep, such as a semaphore release, remain
// legal.
func (t *Thread) Interrupt(fn func()) {
	atomic.AddInt32(&t.interrupt, 1)
	defer atomic.AddInt32(&t.interrupt, -1)
	fn()
}
