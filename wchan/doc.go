// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package wchan provides named wait channels, the sleeping and waking
substrate underneath blocking synchronization primitives.  A wait channel
holds no policy of its own: the owning primitive decides when to sleep and
when to wake, and supplies the spinlock that makes those decisions atomic
with queue membership.
*/
package wchan
