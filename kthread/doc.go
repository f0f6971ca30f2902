// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package kthread provides lightweight thread identity for goroutines.
Blocking primitives use Thread handles to record ownership and to reject
sleeping in interrupt context.  A System gates identity behind a single
bootstrap flag, modeling the early phase of a system's life during which
no identity is available and ownership bookkeeping is suspended.
*/
package kthread
