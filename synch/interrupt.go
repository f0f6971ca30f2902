// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package synch

import (
	"fmt"

	"github.com/xmidt-org/hypnos/kthread"
)

// mustNotBlockInInterrupt panics when self is executing in interrupt
// context.  Operations that can sleep call this on entry; operations that
// never sleep, such as a semaphore release, do not.
func mustNotBlockInInterrupt(self *kthread.Thread, kind, name string) {
	if self != nil && self.InInterrupt() {
		panic(fmt.Sprintf("synch: %s %q cannot block in interrupt context", kind, name))
	}
}
