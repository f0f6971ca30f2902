// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package kthread

import (
	"errors"
	"sync/atomic"

	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// ErrNotBootstrapped is returned by Fork before Bootstrap has run.
var ErrNotBootstrapped = errors.New("kthread: the thread system has not been bootstrapped")

// System tracks thread identity for a group of forked goroutines and
// carries the readiness flag that gates ownership bookkeeping in blocking
// primitives.  A freshly constructed System models early bootstrap:
// identity is unavailable and Fork fails until Bootstrap runs.
type System struct {
	ready  uint32
	active int32
	logger *zap.Logger
}

// SystemOption alters a System under construction.
type SystemOption func(*System)

// WithLogger sets the logger used for fork and exit events.  By default,
// sallust.Default() is used.
func WithLogger(logger *zap.Logger) SystemOption {
	return func(s *System) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSystem constructs a System in the un-bootstrapped state.
func NewSystem(opts ...SystemOption) *System {
	s := &System{
		logger: sallust.Default(),
	}

	for _, o := range opts {
		o(s)
	}

	return s
}

var defaultSystem = func() *System {
	s := NewSystem()
	s.Bootstrap()
	return s
}()

// Default returns the shared process-wide System.  It is always ready.
func Default() *System {
	return defaultSystem
}

// Bootstrap marks the system ready.  Identity becomes available to Fork,
// and primitives gated on Ready begin recording ownership for acquisitions
// that happen afterward.  Bootstrap is idempotent, and a ready system
// never reverts.
func (s *System) Bootstrap() {
	if atomic.CompareAndSwapUint32(&s.ready, 0, 1) {
		s.logger.Debug("thread system bootstrapped")
	}
}

// Ready reports whether Bootstrap has run.  This is the capability flag
// consulted by primitives that record thread ownership.
func (s *System) Ready() bool {
	return atomic.LoadUint32(&s.ready) == 1
}

// Active returns the number of forked threads that have not yet returned.
func (s *System) Active() int {
	return int(atomic.LoadInt32(&s.active))
}

// Adopt binds a fresh Thread handle to the calling goroutine.  Use this
// when an existing goroutine needs identity; prefer Fork for new work.
// Adopted threads are not counted by Active.  Adopt fails with
// ErrNotBootstrapped before Bootstrap.
func (s *System) Adopt(name string) (*Thread, error) {
	if !s.Ready() {
		return nil, ErrNotBootstrapped
	}

	t := newThread(name)
	s.logger.Debug("thread adopted", zap.String("name", t.name), zap.String("id", t.id))
	return t, nil
}

// Fork spawns fn on a new goroutine bound to a fresh Thread handle.  The
// handle is both returned and passed to fn.  Fork fails with
// ErrNotBootstrapped before Bootstrap.
func (s *System) Fork(name string, fn func(*Thread)) (*Thread, error) {
	if !s.Ready() {
		return nil, ErrNotBootstrapped
	}

	t := newThread(name)
	atomic.AddInt32(&s.active, 1)
	s.logger.Debug("thread forked", zap.String("name", t.name), zap.String("id", t.id))

	go func() {
		defer func() {
			atomic.AddInt32(&s.active, -1)
			s.logger.Debug("thread exited", zap.String("name", t.name), zap.String("id", t.id))
		}()

		fn(t)
	}()

	return t, nil
}
