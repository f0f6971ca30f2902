// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package spinlock provides a busy-wait mutual exclusion guard for very short
critical sections.  Higher-level blocking primitives use it to protect their
internal state while they decide whether to sleep.
*/
package spinlock
