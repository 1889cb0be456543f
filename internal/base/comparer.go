// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import "bytes"

// Compare returns -1, 0, or +1 depending on whether a is less than, equal
// to, or greater than b.
type Compare func(a, b []byte) int

// Separator appends to dst a key k such that a <= k < b (given Compare(a, b)
// < 0), shortening a where possible. A trivial implementation just appends
// a unchanged.
type Separator func(dst, a, b []byte) []byte

// Successor appends to dst a key k such that k >= a, shortening a where
// possible. A trivial implementation just appends a unchanged.
type Successor func(dst, a []byte) []byte

// Comparer defines a total ordering over the space of []byte user keys, plus
// the two key-shortening operations used to build compact separator keys.
// Names prefixed "stackdb." are reserved for comparers shipped with this
// module; the name is part of the on-disk identity of a database and a
// higher layer must refuse to open a database created with a different
// comparer.
type Comparer struct {
	Compare   Compare
	Separator Separator
	Successor Successor
	Name      string
}

// DefaultComparer orders keys lexicographically by byte value.
var DefaultComparer = &Comparer{
	Compare: bytes.Compare,

	Separator: func(dst, a, b []byte) []byte {
		n := len(dst)
		dst = append(dst, a...)

		sharedLen := sharedPrefixLen(a, b)
		minLen := len(a)
		if len(b) < minLen {
			minLen = len(b)
		}
		if sharedLen >= minLen {
			// a is a prefix of b (or vice versa): do not shorten.
			return dst
		}

		diffByte := a[sharedLen]
		// The corrected off-by-one guard: shorten only if incrementing the
		// differing byte still sorts strictly before b.
		if diffByte < 0xff && diffByte+1 < b[sharedLen] {
			i := n + sharedLen
			dst[i]++
			return dst[:i+1]
		}
		return dst
	},

	Successor: func(dst, a []byte) []byte {
		for i := 0; i < len(a); i++ {
			if a[i] != 0xff {
				dst = append(dst, a[:i+1]...)
				dst[len(dst)-1]++
				return dst
			}
		}
		// a is a run of 0xff bytes; there is no shorter successor.
		return append(dst, a...)
	},

	Name: "stackdb.BytewiseComparator",
}

func sharedPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
