package synch

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xmidt-org/hypnos/kthread"
)

func ExampleCond() {
	var (
		sys = kthread.NewSystem()
		l   = NewLock("example", WithLockThreads(sys))
		cv  = NewCond("example")

		messages []string
		done     = make(chan struct{})
	)

	sys.Bootstrap()

	_, _ = sys.Fork("consumer", func(self *kthread.Thread) {
		defer close(done)
		l.Acquire(self)
		for len(messages) == 0 {
			cv.Wait(self, l)
		}

		fmt.Println(messages[0])
		l.Release(self)
	})

	self, _ := sys.Adopt("producer")
	l.Acquire(self)
	messages = append(messages, "hello")
	cv.Signal(l)
	l.Release(self)

	<-done

	// Output:
	// hello
}

func testCondWaitSignal(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		sys = kthread.NewSystem()
		l   = NewLock("monitor", WithLockThreads(sys))
		cv  = NewCond("ready")

		value    int
		waiting  = make(chan struct{})
		observed = make(chan int, 1)
	)

	sys.Bootstrap()

	_, err := sys.Fork("waiter", func(self *kthread.Thread) {
		l.Acquire(self)
		close(waiting)
		for value == 0 {
			cv.Wait(self, l)
		}

		assert.True(l.IsHeldBy(self))
		observed <- value
		l.Release(self)
	})
	require.NoError(err)

	// the waiter holds the lock until it sleeps inside Wait, so this
	// acquire cannot complete before the waiter is enqueued
	<-waiting
	self, err := sys.Adopt("signaler")
	require.NoError(err)

	l.Acquire(self)
	value = 1
	cv.Signal(l)
	l.Release(self)

	select {
	case v := <-observed:
		assert.Equal(1, v)
	case <-time.After(time.Second):
		require.FailNow("The signal never reached the waiter")
	}
}

func testCondMesaRecheck(t *testing.T) {
	var (
		require = require.New(t)

		sys = kthread.NewSystem()
		l   = NewLock("monitor", WithLockThreads(sys))
		cv  = NewCond("hint")

		done    bool
		waiting = make(chan struct{})
		woke    = make(chan struct{})
	)

	sys.Bootstrap()

	_, err := sys.Fork("waiter", func(self *kthread.Thread) {
		l.Acquire(self)
		close(waiting)
		for !done {
			cv.Wait(self, l)
		}

		l.Release(self)
		close(woke)
	})
	require.NoError(err)

	<-waiting
	self, err := sys.Adopt("signaler")
	require.NoError(err)

	// a wakeup without the predicate is only a hint: the waiter
	// re-checks and sleeps again
	l.Acquire(self)
	cv.Signal(l)
	l.Release(self)

	select {
	case <-woke:
		require.FailNow("The waiter returned with a false predicate")
	case <-time.After(100 * time.Millisecond):
		// still waiting, as expected
	}

	l.Acquire(self)
	done = true
	cv.Signal(l)
	l.Release(self)

	select {
	case <-woke:
		// passing
	case <-time.After(time.Second):
		require.FailNow("The waiter never observed the predicate")
	}
}

func testCondSignalWakesOne(t *testing.T) {
	const waiters = 2

	var (
		require = require.New(t)

		sys = kthread.NewSystem()
		l   = NewLock("monitor", WithLockThreads(sys))
		cv  = NewCond("single")

		released bool
		finished = make(chan struct{}, waiters)
	)

	sys.Bootstrap()

	for i := 0; i < waiters; i++ {
		_, err := sys.Fork("waiter", func(self *kthread.Thread) {
			l.Acquire(self)
			for !released {
				cv.Wait(self, l)
			}

			l.Release(self)
			finished <- struct{}{}
		})
		require.NoError(err)
	}

	// both waiters must be asleep once the lock can be taken
	self, err := sys.Adopt("signaler")
	require.NoError(err)

	l.Acquire(self)
	released = true
	cv.Signal(l)
	l.Release(self)

	select {
	case <-finished:
		// passing
	case <-time.After(time.Second):
		require.FailNow("The signal did not wake a waiter")
	}

	select {
	case <-finished:
		require.FailNow("A single signal woke more than one waiter")
	case <-time.After(100 * time.Millisecond):
		// still asleep, as expected
	}

	l.Acquire(self)
	cv.Broadcast(l)
	l.Release(self)

	select {
	case <-finished:
		// passing
	case <-time.After(time.Second):
		require.FailNow("The broadcast did not wake the remaining waiter")
	}
}

func testCondBroadcast(t *testing.T) {
	const waiters = 3

	var (
		require = require.New(t)

		sys = kthread.NewSystem()
		l   = NewLock("monitor", WithLockThreads(sys))
		cv  = NewCond("all")

		released bool
		finished = make(chan struct{}, waiters)
	)

	sys.Bootstrap()

	for i := 0; i < waiters; i++ {
		_, err := sys.Fork("waiter", func(self *kthread.Thread) {
			l.Acquire(self)
			for !released {
				cv.Wait(self, l)
			}

			l.Release(self)
			finished <- struct{}{}
		})
		require.NoError(err)
	}

	// every waiter released the lock inside Wait, after taking the
	// cond's guard, so all of them are enqueued once this acquire and
	// the guard acquisition inside Broadcast complete
	self, err := sys.Adopt("broadcaster")
	require.NoError(err)

	l.Acquire(self)
	released = true
	cv.Broadcast(l)
	l.Release(self)

	for i := 0; i < waiters; i++ {
		select {
		case <-finished:
			// passing
		case <-time.After(time.Second):
			require.FailNow("A waiter missed the broadcast")
		}
	}
}

func testCondSignalNoWaiters(t *testing.T) {
	assert := assert.New(t)

	l := NewLock("monitor")
	cv := NewCond("idle")

	assert.NotPanics(func() {
		cv.Signal(l)
		cv.Broadcast(l)
	})
}

func testCondInterrupt(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		l  = NewLock("monitor")
		cv = NewCond("interrupt")
	)

	self, err := kthread.Default().Adopt("handler")
	require.NoError(err)

	l.Acquire(self)
	self.Interrupt(func() {
		assert.Panics(func() {
			cv.Wait(self, l)
		})
	})

	// the lock is still held because the wait never began
	assert.True(l.IsHeldBy(self))
	l.Release(self)
}

func testCondWaitWithoutLockPanics(t *testing.T) {
	assert := assert.New(t)

	// the lock's own release assertion fires; both primitives are
	// discarded afterward
	l := NewLock("monitor")
	cv := NewCond("orphan")

	assert.Panics(func() {
		cv.Wait(nil, l)
	})
}

func testCondDestroy(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		sys = kthread.NewSystem()
		l   = NewLock("monitor", WithLockThreads(sys))
		cv  = NewCond("teardown")

		stop     bool
		finished = make(chan struct{})
	)

	sys.Bootstrap()

	assert.NotPanics(func() {
		NewCond("quiescent").Destroy()
	})

	_, err := sys.Fork("waiter", func(self *kthread.Thread) {
		defer close(finished)
		l.Acquire(self)
		for !stop {
			cv.Wait(self, l)
		}

		l.Release(self)
	})
	require.NoError(err)

	waitForSleepers(t, cv.wc, &cv.guard, 1)
	assert.Panics(func() {
		cv.Destroy()
	})

	self, err := sys.Adopt("main")
	require.NoError(err)

	l.Acquire(self)
	stop = true
	cv.Signal(l)
	l.Release(self)

	select {
	case <-finished:
		// passing
	case <-time.After(time.Second):
		require.FailNow("The waiter never observed the predicate")
	}

	assert.NotPanics(func() {
		cv.Destroy()
	})
}

func TestCond(t *testing.T) {
	t.Run("WaitSignal", testCondWaitSignal)
	t.Run("MesaRecheck", testCondMesaRecheck)
	t.Run("SignalWakesOne", testCondSignalWakesOne)
	t.Run("Broadcast", testCondBroadcast)
	t.Run("SignalNoWaiters", testCondSignalNoWaiters)
	t.Run("Interrupt", testCondInterrupt)
	t.Run("WaitWithoutLockPanics", testCondWaitWithoutLockPanics)
	t.Run("Destroy", testCondDestroy)
}
