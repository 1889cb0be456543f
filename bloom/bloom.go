// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package bloom implements a classic per-block Bloom filter policy: one
// filter built from the keys of each roughly-2KiB run of a data block,
// consulted by a higher-layer table reader to skip disk reads for keys
// that provably aren't present.
package bloom

import "github.com/tomcat1102/StackDB/internal/hash"

// filterSeed is the seed passed to the internal hash function; it has no
// particular meaning beyond being a fixed constant shared by every filter
// this policy builds, so readers and writers agree on it.
const filterSeed uint32 = 0xbc9f1d34

// FilterPolicy builds and probes Bloom filters with a fixed bits-per-key
// budget.
type FilterPolicy struct {
	BitsPerKey int
}

// NewFilterPolicy returns a FilterPolicy that spends bitsPerKey bits of
// filter space per key added.
func NewFilterPolicy(bitsPerKey int) *FilterPolicy {
	return &FilterPolicy{BitsPerKey: bitsPerKey}
}

// numProbes derives k, the number of hash probes per key, from
// BitsPerKey: k = round(bits_per_key * ln(2)), clamped to [1, 30].
func (p *FilterPolicy) numProbes() int {
	k := int(float64(p.BitsPerKey)*0.69 + 0.5)
	switch {
	case k < 1:
		k = 1
	case k > 30:
		k = 30
	}
	return k
}

// CreateFilter appends a filter for keys to dst and returns the extended
// slice.
func (p *FilterPolicy) CreateFilter(keys [][]byte, dst []byte) []byte {
	n := len(keys)
	bits := n * p.BitsPerKey
	if bits < 64 {
		// Very small filters have high false-positive rates; a minimum
		// filter size anchors that rate to something sane.
		bits = 64
	}
	numBytes := (bits + 7) / 8
	bits = numBytes * 8

	init := len(dst)
	dst = append(dst, make([]byte, numBytes)...)
	k := p.numProbes()
	dst = append(dst, byte(k))

	array := dst[init : init+numBytes]
	for _, key := range keys {
		h := hash.Hash32(key, filterSeed)
		delta := rotr17(h)
		for j := 0; j < k; j++ {
			bitPos := h % uint32(bits)
			array[bitPos/8] |= 1 << (bitPos % 8)
			h += delta
		}
	}
	return dst
}

// KeyMayMatch reports whether key might be a member of filter. A false
// result is a definite answer; a true result may be a false positive.
func (p *FilterPolicy) KeyMayMatch(key, filter []byte) bool {
	n := len(filter)
	if n < 2 {
		return false
	}
	k := int(filter[n-1])
	if k > 30 {
		// Reserved for future filter encodings this policy doesn't
		// recognize: treat conservatively as a match.
		return true
	}

	bits := (n - 1) * 8
	h := hash.Hash32(key, filterSeed)
	delta := rotr17(h)
	for j := 0; j < k; j++ {
		bitPos := h % uint32(bits)
		if filter[bitPos/8]&(1<<(bitPos%8)) == 0 {
			return false
		}
		h += delta
	}
	return true
}

func rotr17(h uint32) uint32 {
	return (h >> 17) | (h << 15)
}
