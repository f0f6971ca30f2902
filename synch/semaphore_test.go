package synch

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-kit/kit/metrics/generic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmidt-org/hypnos/kthread"
	"github.com/xmidt-org/hypnos/spinlock"
	"github.com/xmidt-org/hypnos/wchan"
)

// waitForSleepers polls until at least count callers are asleep on w.
// Sleeping happens asynchronously, so tests that need a caller parked
// before proceeding must observe the queue rather than guess with a
// timer.
func waitForSleepers(t *testing.T, w *wchan.Wchan, guard *spinlock.Spinlock, count int) {
	deadline := time.Now().Add(time.Second)
	for {
		guard.Acquire()
		sleeping := w.Waiters(guard)
		guard.Release()

		if sleeping >= count {
			return
		}

		if time.Now().After(deadline) {
			require.FailNow(t, "The expected sleepers never arrived")
		}

		time.Sleep(10 * time.Millisecond)
	}
}

func ExampleSemaphore() {
	const routineCount = 5

	var (
		s     = NewSemaphore("example", 1)
		wg    = new(sync.WaitGroup)
		value int
	)

	wg.Add(routineCount)
	for i := 0; i < routineCount; i++ {
		go func() {
			defer wg.Done()
			defer s.Release()
			s.Acquire(nil)
			value++
			fmt.Println(value)
		}()
	}

	wg.Wait()

	// Unordered output:
	// 1
	// 2
	// 3
	// 4
	// 5
}

func testSemaphoreInitialCount(t *testing.T) {
	assert := assert.New(t)

	for _, count := range []uint{0, 1, 5} {
		s := NewSemaphore("init", count)
		assert.Equal("init", s.Name())
		assert.Equal(count, s.Count())
	}
}

func testSemaphoreAcquireRelease(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		s = NewSemaphore("units", 2)
	)

	// consume all the units without blocking
	for i := 0; i < 2; i++ {
		done := make(chan struct{})
		go func() {
			defer close(done)
			s.Acquire(nil)
		}()

		select {
		case <-done:
			// passing
		case <-time.After(time.Second):
			require.FailNow("Acquire blocked unexpectedly")
		}
	}

	assert.Zero(s.Count())

	s.Release()
	s.Release()
	assert.Equal(uint(2), s.Count())
}

func testSemaphoreBlocksAtZero(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		s        = NewSemaphore("empty", 0)
		ready    = make(chan struct{})
		acquired = make(chan struct{})
	)

	go func() {
		defer close(acquired)
		close(ready)
		s.Acquire(nil) // blocks until the release below
	}()

	<-ready
	select {
	case <-acquired:
		require.FailNow("Acquire should have blocked on a zero count")
	case <-time.After(100 * time.Millisecond):
		// still blocked, as expected
	}

	s.Release()
	select {
	case <-acquired:
		assert.Zero(s.Count())
	case <-time.After(time.Second):
		require.FailNow("Release did not wake the acquirer")
	}
}

func testSemaphoreReleaseWakesOne(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		s     = NewSemaphore("single", 0)
		awake = make(chan struct{}, 2)
	)

	for i := 0; i < 2; i++ {
		go func() {
			s.Acquire(nil)
			awake <- struct{}{}
		}()
	}

	s.Release()
	select {
	case <-awake:
		// passing
	case <-time.After(time.Second):
		require.FailNow("Release did not wake an acquirer")
	}

	select {
	case <-awake:
		require.FailNow("A single release satisfied more than one acquirer")
	case <-time.After(100 * time.Millisecond):
		// still blocked, as expected
	}

	s.Release()
	select {
	case <-awake:
		assert.Zero(s.Count())
	case <-time.After(time.Second):
		require.FailNow("Release did not wake the remaining acquirer")
	}
}

func testSemaphoreStress(t *testing.T) {
	const (
		routines   = 4
		iterations = 250
	)

	var (
		assert = assert.New(t)

		s  = NewSemaphore("stress", 0)
		wg = new(sync.WaitGroup)
	)

	wg.Add(2 * routines)
	for i := 0; i < routines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				s.Release()
			}
		}()

		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				s.Acquire(nil)
			}
		}()
	}

	wg.Wait()
	assert.Zero(s.Count())
}

func testSemaphoreOverflowPanics(t *testing.T) {
	assert := assert.New(t)

	s := NewSemaphore("overflow", ^uint(0))
	assert.Panics(func() {
		s.Release()
	})
}

func testSemaphoreInterrupt(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		s = NewSemaphore("interrupt", 1)
	)

	self, err := kthread.Default().Adopt("handler")
	require.NoError(err)

	self.Interrupt(func() {
		assert.Panics(func() {
			s.Acquire(self)
		})

		// releases never sleep, so they remain legal here
		assert.NotPanics(func() {
			s.Release()
		})
	})

	assert.Equal(uint(2), s.Count())
}

func testSemaphoreMeasures(t *testing.T) {
	var (
		assert = assert.New(t)

		acquires = generic.NewCounter("test")
		releases = generic.NewCounter("test")
		sleeps   = generic.NewCounter("test")
		count    = generic.NewGauge("test")

		s = NewSemaphore("measured", 1, WithSemaphoreMeasures(SemaphoreMeasures{
			Acquires: acquires,
			Releases: releases,
			Sleeps:   sleeps,
			Count:    count,
		}))
	)

	assert.Equal(1.0, count.Value())

	s.Acquire(nil)
	assert.Equal(1.0, acquires.Value())
	assert.Equal(0.0, count.Value())

	s.Release()
	assert.Equal(1.0, releases.Value())
	assert.Equal(1.0, count.Value())
	assert.Zero(sleeps.Value())
}

func testSemaphoreDestroy(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)
	)

	assert.NotPanics(func() {
		NewSemaphore("quiescent", 3).Destroy()
	})

	var (
		s        = NewSemaphore("busy", 0)
		acquired = make(chan struct{})
	)

	go func() {
		defer close(acquired)
		s.Acquire(nil)
	}()

	waitForSleepers(t, s.wc, &s.guard, 1)
	assert.Panics(func() {
		s.Destroy()
	})

	s.Release()
	select {
	case <-acquired:
		// passing
	case <-time.After(time.Second):
		require.FailNow("Release did not wake the acquirer")
	}

	assert.NotPanics(func() {
		s.Destroy()
	})
}

func TestSemaphore(t *testing.T) {
	t.Run("InitialCount", testSemaphoreInitialCount)
	t.Run("AcquireRelease", testSemaphoreAcquireRelease)
	t.Run("BlocksAtZero", testSemaphoreBlocksAtZero)
	t.Run("ReleaseWakesOne", testSemaphoreReleaseWakesOne)
	t.Run("Stress", testSemaphoreStress)
	t.Run("OverflowPanics", testSemaphoreOverflowPanics)
	t.Run("Interrupt", testSemaphoreInterrupt)
	t.Run("Measures", testSemaphoreMeasures)
	t.Run("Destroy", testSemaphoreDestroy)
}
