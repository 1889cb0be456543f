// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package bloom

import "github.com/tomcat1102/StackDB/internal/coding"

// FilterBaseLog controls filter granularity: one filter is generated per
// 2^FilterBaseLog (2 KiB) of data block bytes.
const FilterBaseLog = 11

const filterBase = 1 << FilterBaseLog

// FilterBlockBuilder assembles the per-data-block filters for an entire
// table into one contiguous block. Callers must follow the sequence
// StartBlock, zero or more AddKey, optionally repeated, then Finish:
// (StartBlock AddKey*)* Finish.
type FilterBlockBuilder struct {
	policy  *FilterPolicy
	keys    [][]byte // keys buffered for the filter under construction
	result  []byte   // filters emitted so far
	offsets []uint32 // offsets[i] is where filter i begins in result
}

// NewFilterBlockBuilder returns an empty FilterBlockBuilder using policy.
func NewFilterBlockBuilder(policy *FilterPolicy) *FilterBlockBuilder {
	return &FilterBlockBuilder{policy: policy}
}

// StartBlock signals that a new data block begins at blockOffset (its
// byte offset within the table). Any filters for gaps before this
// block's filter index are generated as empty (zero-length) filters.
func (b *FilterBlockBuilder) StartBlock(blockOffset uint64) {
	filterIndex := blockOffset >> FilterBaseLog
	for filterIndex > uint64(len(b.offsets)) {
		b.generateFilter()
	}
}

// AddKey buffers key for inclusion in the filter currently under
// construction.
func (b *FilterBlockBuilder) AddKey(key []byte) {
	b.keys = append(b.keys, append([]byte(nil), key...))
}

func (b *FilterBlockBuilder) generateFilter() {
	// Record the new filter's start offset before appending anything: if
	// there are no buffered keys, this produces a zero-length region
	// (start == the previous filter's end), which KeyMayMatch treats as
	// "match nothing".
	b.offsets = append(b.offsets, uint32(len(b.result)))
	if len(b.keys) == 0 {
		return
	}
	b.result = b.policy.CreateFilter(b.keys, b.result)
	b.keys = b.keys[:0]
}

// Finish flushes any pending filter, appends the offset table and
// trailer, and returns the complete filter block.
func (b *FilterBlockBuilder) Finish() []byte {
	if len(b.keys) > 0 {
		b.generateFilter()
	}

	arrayOffset := uint32(len(b.result))
	for _, off := range b.offsets {
		b.result = coding.PutFixed32(b.result, off)
	}
	b.result = coding.PutFixed32(b.result, arrayOffset)
	b.result = append(b.result, byte(FilterBaseLog))
	return b.result
}

// FilterBlockReader answers KeyMayMatch queries against a block produced
// by FilterBlockBuilder.Finish.
type FilterBlockReader struct {
	policy       *FilterPolicy
	data         []byte
	offsetsStart int
	numFilters   int
	baseLog      uint
}

// NewFilterBlockReader parses contents (a complete filter block) for use
// with policy. A malformed or too-short block yields a reader with no
// filters, so every KeyMayMatch call takes the out-of-range path and
// answers "may match".
func NewFilterBlockReader(policy *FilterPolicy, contents []byte) *FilterBlockReader {
	n := len(contents)
	if n < 5 {
		return &FilterBlockReader{}
	}
	baseLog := uint(contents[n-1])
	arrayOffset := coding.DecodeFixed32(contents[n-5 : n-1])
	if arrayOffset > uint32(n-5) {
		return &FilterBlockReader{}
	}
	numFilters := (int(n-5) - int(arrayOffset)) / 4
	return &FilterBlockReader{
		policy:       policy,
		data:         contents,
		offsetsStart: int(arrayOffset),
		numFilters:   numFilters,
		baseLog:      baseLog,
	}
}

// KeyMayMatch reports whether key might be present in the data block
// starting at blockOffset. An out-of-range filter index is treated
// conservatively as "may match".
func (r *FilterBlockReader) KeyMayMatch(blockOffset uint64, key []byte) bool {
	index := int(blockOffset >> r.baseLog)
	if index >= r.numFilters {
		return true
	}

	start := coding.DecodeFixed32(r.data[r.offsetsStart+index*4 : r.offsetsStart+index*4+4])
	var limit uint32
	if index+1 < r.numFilters {
		limit = coding.DecodeFixed32(r.data[r.offsetsStart+(index+1)*4 : r.offsetsStart+(index+1)*4+4])
	} else {
		limit = uint32(r.offsetsStart)
	}
	if start == limit {
		return false
	}
	return r.policy.KeyMayMatch(key, r.data[start:limit])
}
