// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

// Random is a small Park-Miller minimal-standard LCG. It exists because the
// skiplist's "height ~ geometric(1/4)" height draw is part of the observable
// shape of the structure (spec'd in terms of rand()%4), and math/rand's
// generator and distribution helpers are not specified that way; a
// dedicated, deterministic generator keeps the height distribution exactly
// the one described for the skiplist regardless of which PRNG the rest of
// the program happens to use.
type Random struct {
	seed uint32
}

const (
	randM uint32 = 2147483647
	randA uint64 = 16807
)

// NewRandom returns a Random seeded with s. A seed of 0 or math.MaxInt32 is
// remapped to 1 to avoid the LCG's two fixed points.
func NewRandom(s uint32) *Random {
	seed := s & 0x7fffffff
	if seed == 0 || seed == randM {
		seed = 1
	}
	return &Random{seed: seed}
}

// Next returns a pseudo-random number in [0, 2^31-1].
func (r *Random) Next() uint32 {
	product := uint64(r.seed) * randA
	seed := uint32(product>>31) + uint32(product&uint64(randM))
	if seed > randM {
		seed -= randM
	}
	r.seed = seed
	return seed
}

// Uniform returns a pseudo-random number in [0, n).
func (r *Random) Uniform(n int) uint32 {
	return r.Next() % uint32(n)
}

// OneIn returns true with probability 1/n.
func (r *Random) OneIn(n int) bool {
	return r.Next()%uint32(n) == 0
}
