// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package memtable implements the in-memory ordered table that buffers
// writes before they reach an on-disk table: an arena-backed skiplist
// keyed by encoded internal keys.
package memtable

import (
	"sync/atomic"

	"github.com/tomcat1102/StackDB/dbstatus"
	"github.com/tomcat1102/StackDB/internal/arena"
	"github.com/tomcat1102/StackDB/internal/base"
	"github.com/tomcat1102/StackDB/internal/coding"
	"github.com/tomcat1102/StackDB/internal/skl"
)

// entryComparer orders two arena-encoded entries (varint32(ikey_len) ||
// internal_key || varint32(value_len) || value) by their internal-key
// portion, under the InternalKeyComparer's newest-first-on-tie rule.
type entryComparer struct {
	cmp base.InternalKeyComparer
}

func (c entryComparer) compare(a, b []byte) int {
	ak := entryInternalKey(a)
	bk := entryInternalKey(b)
	return c.cmp.Compare(ak, bk)
}

func entryInternalKey(entry []byte) []byte {
	klen, rest, ok := coding.GetUvarint32(entry)
	if !ok {
		panic("memtable: corrupt entry")
	}
	return rest[:klen]
}

// MemTable is a reference-counted, arena-backed ordered table. A freshly
// constructed MemTable starts with a reference count of one; callers that
// hand it off to another owner should call Ref, and every owner must call
// Unref exactly once when done. Nothing is freed explicitly when the count
// drops to zero; the table's arena and skiplist are reclaimed by the
// garbage collector once the table is unreachable.
type MemTable struct {
	userCmp base.Compare
	arena   *arena.Arena
	list    *skl.Skiplist
	refs    atomic.Int32
}

// New returns an empty MemTable ordered by userCmp, with a reference count
// of one.
func New(userCmp base.Compare) *MemTable {
	m := &MemTable{
		userCmp: userCmp,
		arena:   arena.New(),
	}
	ec := entryComparer{cmp: base.InternalKeyComparer{UserCompare: userCmp}}
	m.list = skl.New(ec.compare, 0x5bd1e995)
	m.refs.Store(1)
	return m
}

// Ref increments the reference count.
func (m *MemTable) Ref() { m.refs.Add(1) }

// Unref decrements the reference count. It is a no-op beyond the
// decrement: once it reaches zero, the MemTable (and its arena) becomes
// eligible for garbage collection once the last reference is dropped by
// its caller; there is no further cleanup to run.
func (m *MemTable) Unref() {
	if m.refs.Add(-1) < 0 {
		panic("memtable: reference count went negative")
	}
}

// ApproximateMemoryUsage returns an estimate of the bytes held by the
// table's arena.
func (m *MemTable) ApproximateMemoryUsage() uint64 {
	return m.arena.MemoryUsage()
}

// Add inserts (userKey, value) at sequence seq with the given kind. seq
// must be strictly greater than any sequence number already used for
// userKey in this table, and the (userKey, seq) pair must not already be
// present; the caller (the write path) guarantees both by construction.
func (m *MemTable) Add(seq base.SeqNum, kind base.ValueKind, userKey, value []byte) {
	internalKeyLen := len(userKey) + base.InternalKeySize
	valueLen := len(value)

	encodedLen := coding.LenUvarint32(uint32(internalKeyLen)) + internalKeyLen +
		coding.LenUvarint32(uint32(valueLen)) + valueLen

	buf := m.arena.Allocate(encodedLen)
	dst := buf[:0]
	dst = coding.PutUvarint32(dst, uint32(internalKeyLen))
	dst = base.AppendInternalKey(dst, base.ParsedInternalKey{UserKey: userKey, SeqNum: seq, Kind: kind})
	dst = coding.PutUvarint32(dst, uint32(valueLen))
	dst = append(dst, value...)

	m.list.Insert(dst)
}

// Get looks up userKey as of lookupKey's snapshot sequence. If the table
// holds a live value for userKey visible at that sequence, it is returned
// with found=true and a zero Status. If the most recent entry visible at
// that sequence is a deletion tombstone, found=true and status reports
// NotFound. If no entry for userKey is visible at all, found is false and
// the caller should keep searching (e.g. in an on-disk table).
func (m *MemTable) Get(lookupKey *base.LookupKey) (value []byte, found bool, status dbstatus.Status) {
	it := m.list.NewIterator()
	it.Seek(lookupKey.MemtableKey())
	if !it.Valid() {
		return nil, false, dbstatus.OK()
	}

	entry := it.Key()
	klen, rest, ok := coding.GetUvarint32(entry)
	if !ok {
		return nil, false, dbstatus.Corruptionf("memtable entry: truncated key length")
	}
	ikey := rest[:klen]
	userKeyFound := ikey[:len(ikey)-base.InternalKeySize]
	if m.userCmp(userKeyFound, lookupKey.UserKey()) != 0 {
		return nil, false, dbstatus.OK()
	}

	packed := coding.DecodeFixed64(ikey[len(ikey)-base.InternalKeySize:])
	// Bitwise AND, not logical AND: isolating the low byte requires & 0xff.
	kind := base.ValueKind(packed & 0xff)

	switch kind {
	case base.ValueKindValue:
		vlen, vrest, ok := coding.GetUvarint32(rest[klen:])
		if !ok {
			return nil, false, dbstatus.Corruptionf("memtable entry: truncated value length")
		}
		return vrest[:vlen], true, dbstatus.OK()
	case base.ValueKindDeletion:
		return nil, true, dbstatus.NotFoundf("")
	default:
		return nil, false, dbstatus.Corruptionf("memtable entry: unknown value kind")
	}
}

// Iterator walks the table's entries in ascending internal-key order.
type Iterator struct {
	it *skl.Iterator
}

// NewIterator returns an Iterator positioned before the first entry.
func (m *MemTable) NewIterator() *Iterator {
	return &Iterator{it: m.list.NewIterator()}
}

// Valid reports whether the iterator is positioned at an entry.
func (i *Iterator) Valid() bool { return i.it.Valid() }

// SeekToFirst positions the iterator at the first entry.
func (i *Iterator) SeekToFirst() { i.it.SeekToFirst() }

// SeekToLast positions the iterator at the last entry.
func (i *Iterator) SeekToLast() { i.it.SeekToLast() }

// Seek positions the iterator at the first entry whose internal key is
// >= the target memtable key (as produced by base.LookupKey.MemtableKey).
func (i *Iterator) Seek(memtableKey []byte) { i.it.Seek(memtableKey) }

// Next advances to the next entry.
func (i *Iterator) Next() { i.it.Next() }

// Prev retreats to the previous entry.
func (i *Iterator) Prev() { i.it.Prev() }

// Key returns the current entry's internal key (user key plus packed
// seq/kind trailer), not the raw memtable-encoded key.
func (i *Iterator) Key() base.InternalKey {
	entry := i.it.Key()
	klen, rest, _ := coding.GetUvarint32(entry)
	return base.InternalKey(rest[:klen])
}

// Value returns the current entry's raw value bytes.
func (i *Iterator) Value() []byte {
	entry := i.it.Key()
	klen, rest, _ := coding.GetUvarint32(entry)
	vlen, vrest, _ := coding.GetUvarint32(rest[klen:])
	return vrest[:vlen]
}

