// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package skl implements a single-writer, multi-reader skiplist keyed by
// opaque []byte entries under a caller-supplied comparator. It backs the
// memtable: inserts only ever append (no entry is ever removed or mutated
// once linked), which is what lets readers walk the structure without
// taking a lock.
//
// Safety for concurrent use follows the same contract as the system this
// was modeled on: at most one goroutine may call Insert at a time, and it
// must not run concurrently with any other Insert. Any number of readers
// (via NewIterator) may run concurrently with each other and with the
// single writer, provided they hold a reference to the key/value memory
// for as long as they dereference it (ownership of that is the caller's,
// typically via the arena the entries were allocated from).
package skl

import (
	"sync/atomic"

	"github.com/tomcat1102/StackDB/internal/base"
)

// MaxHeight is the tallest a node's tower may grow.
const MaxHeight = 12

// branching is the skiplist's branching factor: each level is populated
// with probability 1/branching relative to the level below it.
const branching = 4

// Comparer orders two encoded entries.
type Comparer func(a, b []byte) int

type node struct {
	key   []byte
	tower [MaxHeight]atomic.Pointer[node]
}

// Skiplist is an ordered set of []byte entries.
type Skiplist struct {
	cmp    Comparer
	rnd    *base.Random
	head   *node
	height atomic.Int32 // current max height in use, 1-based
}

// New returns an empty Skiplist ordered by cmp. seed seeds the internal
// height-draw generator; callers that want reproducible structure across
// runs (tests, fuzzing) should pass a fixed seed.
func New(cmp Comparer, seed uint32) *Skiplist {
	s := &Skiplist{
		cmp:  cmp,
		rnd:  base.NewRandom(seed),
		head: &node{},
	}
	s.height.Store(1)
	return s
}

func (s *Skiplist) randomHeight() int {
	h := 1
	for h < MaxHeight && s.rnd.OneIn(branching) {
		h++
	}
	return h
}

// findGreaterOrEqual walks from head, filling prev (if non-nil) with, at
// each level, the last node known to compare strictly less than key. It
// returns the first node comparing >= key, or nil if there is none.
func (s *Skiplist) findGreaterOrEqual(key []byte, prev *[MaxHeight]*node) *node {
	x := s.head
	level := int(s.height.Load()) - 1
	for {
		next := x.tower[level].Load()
		if next != nil && s.cmp(next.key, key) < 0 {
			x = next
			continue
		}
		if prev != nil {
			prev[level] = x
		}
		if level == 0 {
			return next
		}
		level--
	}
}

// findLessThan returns the last node in the list whose key compares
// strictly less than key.
func (s *Skiplist) findLessThan(key []byte) *node {
	x := s.head
	level := int(s.height.Load()) - 1
	for {
		next := x.tower[level].Load()
		if next != nil && s.cmp(next.key, key) < 0 {
			x = next
			continue
		}
		if level == 0 {
			return x
		}
		level--
	}
}

func (s *Skiplist) findLast() *node {
	x := s.head
	level := int(s.height.Load()) - 1
	for {
		next := x.tower[level].Load()
		if next != nil {
			x = next
			continue
		}
		if level == 0 {
			if x == s.head {
				return nil
			}
			return x
		}
		level--
	}
}

// Insert adds key to the skiplist. key must not already be present
// (equal under cmp to an existing entry); the memtable guarantees this by
// embedding a unique sequence number in every entry. Insert is not safe
// to call concurrently with itself or with another Insert.
func (s *Skiplist) Insert(key []byte) {
	var prev [MaxHeight]*node
	s.findGreaterOrEqual(key, &prev)

	height := s.randomHeight()
	if curHeight := int(s.height.Load()); height > curHeight {
		for i := curHeight; i < height; i++ {
			prev[i] = s.head
		}
		s.height.Store(int32(height))
	}

	n := &node{key: key}
	for i := 0; i < height; i++ {
		n.tower[i].Store(prev[i].tower[i].Load())
		prev[i].tower[i].Store(n)
	}
}

// Contains reports whether key is present in the skiplist.
func (s *Skiplist) Contains(key []byte) bool {
	n := s.findGreaterOrEqual(key, nil)
	return n != nil && s.cmp(n.key, key) == 0
}

// Iterator walks the skiplist in ascending order.
type Iterator struct {
	list *Skiplist
	node *node
}

// NewIterator returns an Iterator positioned before the first entry.
func (s *Skiplist) NewIterator() *Iterator {
	return &Iterator{list: s}
}

// Valid reports whether the iterator is positioned at an entry.
func (it *Iterator) Valid() bool { return it.node != nil }

// Key returns the entry the iterator is positioned at. Valid must be true.
func (it *Iterator) Key() []byte { return it.node.key }

// Next advances to the next entry.
func (it *Iterator) Next() { it.node = it.node.tower[0].Load() }

// Prev retreats to the previous entry. It is O(log n).
func (it *Iterator) Prev() {
	it.node = it.list.findLessThan(it.node.key)
	if it.node == it.list.head {
		it.node = nil
	}
}

// SeekToFirst positions the iterator at the first entry.
func (it *Iterator) SeekToFirst() { it.node = it.list.head.tower[0].Load() }

// SeekToLast positions the iterator at the last entry.
func (it *Iterator) SeekToLast() { it.node = it.list.findLast() }

// Seek positions the iterator at the first entry >= key.
func (it *Iterator) Seek(key []byte) { it.node = it.list.findGreaterOrEqual(key, nil) }
