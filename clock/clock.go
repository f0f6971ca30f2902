// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package clock provides a simple clock abstraction so that code which reads
the current time can be tested deterministically.  There are no timers or
tickers here: blocking primitives in this module sleep without deadlines.
*/
package clock

import "time"

// Interface represents a clock with the core read and sleep functionality
// of the stdlib time package.
type Interface interface {
	Now() time.Time
	Sleep(time.Duration)
}

type systemClock struct{}

func (sc systemClock) Now() time.Time {
	return time.Now()
}

func (sc systemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// System returns a clock backed by the time package.
func System() Interface {
	return systemClock{}
}
