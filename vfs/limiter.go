// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package vfs

import "sync/atomic"

// limiter is a counting-semaphore budget shared by the POSIX backend's
// mmap and open-fd limits. Acquire/Release use relaxed atomic add/sub, as
// the spec's resource model calls for: the exact in-flight count is
// advisory (it only governs whether a random-access file falls back from
// mmap/permanent-fd to open-on-each-read), not a correctness invariant.
type limiter struct {
	max     int32
	acquire int32
}

func newLimiter(max int) *limiter {
	return &limiter{max: int32(max)}
}

// Acquire reserves one unit of budget, returning false if the budget is
// already exhausted.
func (l *limiter) Acquire() bool {
	if l == nil || l.max <= 0 {
		return false
	}
	n := atomic.AddInt32(&l.acquire, 1)
	if n > l.max {
		atomic.AddInt32(&l.acquire, -1)
		return false
	}
	return true
}

// Release gives back one unit of budget previously reserved by Acquire.
func (l *limiter) Release() {
	if l == nil {
		return
	}
	atomic.AddInt32(&l.acquire, -1)
}
