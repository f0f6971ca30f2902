// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package synch

import (
	"errors"
	"sync"

	"github.com/go-kit/kit/metrics/provider"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"

	"github.com/xmidt-org/hypnos/clock"
	"github.com/xmidt-org/hypnos/kthread"
)

// ErrExhausted is returned by Registry constructors when the registry
// already tracks its configured limit of live primitives.
var ErrExhausted = errors.New("synch: no more primitives can be allocated")

// Primitive is implemented by every synchronization primitive this
// package creates.
type Primitive interface {
	Name() string
	Destroy()
}

// Registry creates and tracks live primitives.  An optional limit models
// allocation exhaustion: constructors fail with ErrExhausted instead of
// panicking, since running out of resources is an ordinary error rather
// than a contract violation.  Destroying a primitive frees its slot.
//
// A Registry also centralizes the collaborators injected into each
// primitive it creates: the thread system, the clock, the metrics
// provider, and the logger.
type Registry struct {
	limit    int
	threads  *kthread.System
	clock    clock.Interface
	provider provider.Provider
	logger   *zap.Logger

	lock sync.Mutex
	live map[Primitive]bool
}

// RegistryOption alters a Registry under construction.
type RegistryOption func(*Registry)

// WithLimit caps the number of live primitives.  A nonpositive limit
// means unlimited.
func WithLimit(limit int) RegistryOption {
	return func(r *Registry) {
		r.limit = limit
	}
}

// WithThreads sets the thread system injected into created locks.  By
// default, kthread.Default() is used.
func WithThreads(sys *kthread.System) RegistryOption {
	return func(r *Registry) {
		if sys != nil {
			r.threads = sys
		}
	}
}

// WithClock sets the clock injected into created locks.  By default, the
// system clock is used.
func WithClock(c clock.Interface) RegistryOption {
	return func(r *Registry) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithProvider sets the metrics provider used to realize measures for
// created primitives.  By default, measures discard their data.
func WithProvider(p provider.Provider) RegistryOption {
	return func(r *Registry) {
		if p != nil {
			r.provider = p
		}
	}
}

// WithLogger sets the logger for create and destroy events.  By default,
// sallust.Default() is used.
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry constructs a Registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		threads: kthread.Default(),
		clock:   clock.System(),
		logger:  sallust.Default(),
		live:    make(map[Primitive]bool),
	}

	for _, o := range opts {
		o(r)
	}

	return r
}

func (r *Registry) admit(p Primitive) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.limit > 0 && len(r.live) >= r.limit {
		return ErrExhausted
	}

	r.live[p] = true
	return nil
}

func (r *Registry) forget(p Primitive) {
	r.lock.Lock()
	delete(r.live, p)
	r.lock.Unlock()

	r.logger.Debug("primitive destroyed", zap.String("name", p.Name()))
}

// Len returns the number of live primitives.
func (r *Registry) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.live)
}

// Each invokes f for every live primitive.  The registry lock is held for
// the duration, so f must not create or destroy primitives.
func (r *Registry) Each(f func(Primitive)) {
	r.lock.Lock()
	defer r.lock.Unlock()

	for p := range r.live {
		f(p)
	}
}

// NewSemaphore creates and tracks a Semaphore.  The registry's provider
// realizes the semaphore's measures unless overridden by opts.
func (r *Registry) NewSemaphore(name string, count uint, opts ...SemaphoreOption) (*Semaphore, error) {
	var defaults []SemaphoreOption
	if r.provider != nil {
		defaults = append(defaults, WithSemaphoreMeasures(NewSemaphoreMeasures(r.provider)))
	}

	s := NewSemaphore(name, count, append(defaults, opts...)...)
	s.release = func() { r.forget(s) }

	if err := r.admit(s); err != nil {
		return nil, err
	}

	r.logger.Debug("semaphore created", zap.String("name", name), zap.Uint("count", count))
	return s, nil
}

// NewLock creates and tracks a Lock, injecting the registry's thread
// system and clock.
func (r *Registry) NewLock(name string, opts ...LockOption) (*Lock, error) {
	defaults := []LockOption{
		WithLockThreads(r.threads),
		WithLockClock(r.clock),
	}

	if r.provider != nil {
		defaults = append(defaults, WithLockMeasures(NewLockMeasures(r.provider)))
	}

	l := NewLock(name, append(defaults, opts...)...)
	l.release = func() { r.forget(l) }

	if err := r.admit(l); err != nil {
		return nil, err
	}

	r.logger.Debug("lock created", zap.String("name", name))
	return l, nil
}

// NewCond creates and tracks a Cond.
func (r *Registry) NewCond(name string, opts ...CondOption) (*Cond, error) {
	var defaults []CondOption
	if r.provider != nil {
		defaults = append(defaults, WithCondMeasures(NewCondMeasures(r.provider)))
	}

	c := NewCond(name, append(defaults, opts...)...)
	c.release = func() { r.forget(c) }

	if err := r.admit(c); err != nil {
		return nil, err
	}

	r.logger.Debug("cond created", zap.String("name", name))
	return c, nil
}
