// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package synch

import (
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/provider"
	"github.com/prometheus/client_golang/prometheus"
	themisXmetrics "github.com/xmidt-org/themis/xmetrics"
	"go.uber.org/fx"

	"github.com/xmidt-org/hypnos/xmetrics"
)

// Names for our metrics
const (
	SemaphoreAcquireCount = "semaphore_acquire_count"
	SemaphoreReleaseCount = "semaphore_release_count"
	SemaphoreSleepCount   = "semaphore_sleep_count"
	SemaphoreCountValue   = "semaphore_count_value"

	LockAcquireCount   = "lock_acquire_count"
	LockReleaseCount   = "lock_release_count"
	LockContendedCount = "lock_contended_count"
	LockWaitSeconds    = "lock_wait_seconds"

	CondWaitCount      = "cond_wait_count"
	CondSignalCount    = "cond_signal_count"
	CondBroadcastCount = "cond_broadcast_count"
)

// help messages
const (
	semaphoreAcquireHelpMsg = "Count of semaphore units consumed"
	semaphoreReleaseHelpMsg = "Count of semaphore units supplied"
	semaphoreSleepHelpMsg   = "Count of times an acquirer slept waiting for a unit"
	semaphoreCountHelpMsg   = "Current semaphore count"

	lockAcquireHelpMsg   = "Count of completed lock acquisitions"
	lockReleaseHelpMsg   = "Count of lock releases"
	lockContendedHelpMsg = "Count of lock acquisitions that had to sleep"
	lockWaitHelpMsg      = "Time spent sleeping for a contended lock"

	condWaitHelpMsg      = "Count of condition variable waits"
	condSignalHelpMsg    = "Count of condition variable signals"
	condBroadcastHelpMsg = "Count of condition variable broadcasts"
)

// defaultWaitBuckets are the observation buckets for lock wait durations,
// in seconds.
var defaultWaitBuckets = []float64{0.0001, 0.001, 0.01, 0.1, 1.0, 10.0}

// Metrics returns the Metrics relevant to this package, targeting our
// older non uber/fx applications.
func Metrics() []xmetrics.Metric {
	return []xmetrics.Metric{
		{Name: SemaphoreAcquireCount, Type: xmetrics.CounterType, Help: semaphoreAcquireHelpMsg},
		{Name: SemaphoreReleaseCount, Type: xmetrics.CounterType, Help: semaphoreReleaseHelpMsg},
		{Name: SemaphoreSleepCount, Type: xmetrics.CounterType, Help: semaphoreSleepHelpMsg},
		{Name: SemaphoreCountValue, Type: xmetrics.GaugeType, Help: semaphoreCountHelpMsg},
		{Name: LockAcquireCount, Type: xmetrics.CounterType, Help: lockAcquireHelpMsg},
		{Name: LockReleaseCount, Type: xmetrics.CounterType, Help: lockReleaseHelpMsg},
		{Name: LockContendedCount, Type: xmetrics.CounterType, Help: lockContendedHelpMsg},
		{Name: LockWaitSeconds, Type: xmetrics.HistogramType, Help: lockWaitHelpMsg, Buckets: defaultWaitBuckets},
		{Name: CondWaitCount, Type: xmetrics.CounterType, Help: condWaitHelpMsg},
		{Name: CondSignalCount, Type: xmetrics.CounterType, Help: condSignalHelpMsg},
		{Name: CondBroadcastCount, Type: xmetrics.CounterType, Help: condBroadcastHelpMsg},
	}
}

// ProvideMetrics provides the counter and gauge metrics relevant to this
// package as uber/fx options.  The lock wait histogram is not provided
// here; realize it through a provider with NewLockMeasures.
func ProvideMetrics() fx.Option {
	return fx.Provide(
		themisXmetrics.ProvideCounter(prometheus.CounterOpts{
			Name: SemaphoreAcquireCount,
			Help: semaphoreAcquireHelpMsg,
		}),
		themisXmetrics.ProvideCounter(prometheus.CounterOpts{
			Name: SemaphoreReleaseCount,
			Help: semaphoreReleaseHelpMsg,
		}),
		themisXmetrics.ProvideCounter(prometheus.CounterOpts{
			Name: SemaphoreSleepCount,
			Help: semaphoreSleepHelpMsg,
		}),
		themisXmetrics.ProvideGauge(prometheus.GaugeOpts{
			Name: SemaphoreCountValue,
			Help: semaphoreCountHelpMsg,
		}),
		themisXmetrics.ProvideCounter(prometheus.CounterOpts{
			Name: LockAcquireCount,
			Help: lockAcquireHelpMsg,
		}),
		themisXmetrics.ProvideCounter(prometheus.CounterOpts{
			Name: LockReleaseCount,
			Help: lockReleaseHelpMsg,
		}),
		themisXmetrics.ProvideCounter(prometheus.CounterOpts{
			Name: LockContendedCount,
			Help: lockContendedHelpMsg,
		}),
		themisXmetrics.ProvideCounter(prometheus.CounterOpts{
			Name: CondWaitCount,
			Help: condWaitHelpMsg,
		}),
		themisXmetrics.ProvideCounter(prometheus.CounterOpts{
			Name: CondSignalCount,
			Help: condSignalHelpMsg,
		}),
		themisXmetrics.ProvideCounter(prometheus.CounterOpts{
			Name: CondBroadcastCount,
			Help: condBroadcastHelpMsg,
		}),
	)
}

// SemaphoreMeasures describes the metrics recorded by a Semaphore.
type SemaphoreMeasures struct {
	Acquires xmetrics.Adder
	Releases xmetrics.Adder
	Sleeps   xmetrics.Adder
	Count    xmetrics.Setter
}

// NewSemaphoreMeasures realizes the semaphore metrics from a provider.
func NewSemaphoreMeasures(p provider.Provider) SemaphoreMeasures {
	return SemaphoreMeasures{
		Acquires: p.NewCounter(SemaphoreAcquireCount),
		Releases: p.NewCounter(SemaphoreReleaseCount),
		Sleeps:   p.NewCounter(SemaphoreSleepCount),
		Count:    p.NewGauge(SemaphoreCountValue),
	}
}

func (m SemaphoreMeasures) withDefaults() SemaphoreMeasures {
	if m.Acquires == nil {
		m.Acquires = discard.NewCounter()
	}

	if m.Releases == nil {
		m.Releases = discard.NewCounter()
	}

	if m.Sleeps == nil {
		m.Sleeps = discard.NewCounter()
	}

	if m.Count == nil {
		m.Count = discard.NewGauge()
	}

	return m
}

// LockMeasures describes the metrics recorded by a Lock.
type LockMeasures struct {
	Acquires    xmetrics.Adder
	Releases    xmetrics.Adder
	Contended   xmetrics.Adder
	WaitSeconds xmetrics.Observer
}

// NewLockMeasures realizes the lock metrics from a provider.
func NewLockMeasures(p provider.Provider) LockMeasures {
	return LockMeasures{
		Acquires:    p.NewCounter(LockAcquireCount),
		Releases:    p.NewCounter(LockReleaseCount),
		Contended:   p.NewCounter(LockContendedCount),
		WaitSeconds: p.NewHistogram(LockWaitSeconds, len(defaultWaitBuckets)),
	}
}

func (m LockMeasures) withDefaults() LockMeasures {
	if m.Acquires == nil {
		m.Acquires = discard.NewCounter()
	}

	if m.Releases == nil {
		m.Releases = discard.NewCounter()
	}

	if m.Contended == nil {
		m.Contended = discard.NewCounter()
	}

	if m.WaitSeconds == nil {
		m.WaitSeconds = discard.NewHistogram()
	}

	return m
}

// CondMeasures describes the metrics recorded by a Cond.
type CondMeasures struct {
	Waits      xmetrics.Adder
	Signals    xmetrics.Adder
	Broadcasts xmetrics.Adder
}

// NewCondMeasures realizes the condition variable metrics from a provider.
func NewCondMeasures(p provider.Provider) CondMeasures {
	return CondMeasures{
		Waits:      p.NewCounter(CondWaitCount),
		Signals:    p.NewCounter(CondSignalCount),
		Broadcasts: p.NewCounter(CondBroadcastCount),
	}
}

func (m CondMeasures) withDefaults() CondMeasures {
	if m.Waits == nil {
		m.Waits = discard.NewCounter()
	}

	if m.Signals == nil {
		m.Signals = discard.NewCounter()
	}

	if m.Broadcasts == nil {
		m.Broadcasts = discard.NewCounter()
	}

	return m
}
