// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package hash implements the small Murmur-style hash used by the Bloom
// filter policy. Its exact mixing layout is part of the on-disk filter
// format (two filters built with the same seed must hash identically), so
// it is kept distinct from any general-purpose hash in the ecosystem.
package hash

// Hash32 hashes data using seed, matching the mixer described in the filter
// policy design: consume 4 bytes at a time, fold the 1-3 byte tail in
// decreasing significance, and finish with a final avalanche step.
func Hash32(data []byte, seed uint32) uint32 {
	const m uint32 = 0xc6a4a793
	const r uint32 = 24

	h := seed ^ (uint32(len(data)) * m)
	for len(data) >= 4 {
		h += uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
		h *= m
		h ^= h >> 16
		data = data[4:]
	}

	switch len(data) {
	case 3:
		h += uint32(data[2]) << 16
		fallthrough
	case 2:
		h += uint32(data[1]) << 8
		fallthrough
	case 1:
		h += uint32(data[0])
		h *= m
		h ^= h >> r
	}
	return h
}
