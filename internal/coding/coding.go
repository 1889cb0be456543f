// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package coding implements the endian-neutral fixed-width and varint
// encodings used throughout the storage engine: fixed32/fixed64 are
// little-endian, and varints are base-128 with the continuation bit in the
// high bit of each byte.
package coding

import "encoding/binary"

// MaxVarint32Bytes is the largest number of bytes a varint32 may occupy.
const MaxVarint32Bytes = 5

// MaxVarint64Bytes is the largest number of bytes a varint64 may occupy.
const MaxVarint64Bytes = 10

// PutFixed32 appends the little-endian encoding of v to dst.
func PutFixed32(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}

// PutFixed64 appends the little-endian encoding of v to dst.
func PutFixed64(dst []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(dst, buf[:]...)
}

// DecodeFixed32 decodes a little-endian uint32 from the first 4 bytes of b.
func DecodeFixed32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// DecodeFixed64 decodes a little-endian uint64 from the first 8 bytes of b.
func DecodeFixed64(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}

// PutUvarint32 appends the varint encoding of v to dst.
func PutUvarint32(dst []byte, v uint32) []byte {
	return PutUvarint64(dst, uint64(v))
}

// PutUvarint64 appends the varint encoding of v to dst.
func PutUvarint64(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// LenUvarint32 returns the number of bytes PutUvarint32 would append for v.
func LenUvarint32(v uint32) int {
	return LenUvarint64(uint64(v))
}

// LenUvarint64 returns the number of bytes PutUvarint64 would append for v.
func LenUvarint64(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// GetUvarint32 parses a varint32 from the front of b, returning the decoded
// value and the remaining, unconsumed suffix. ok is false if b does not
// contain a valid, terminated varint32 within MaxVarint32Bytes bytes (in
// particular, a 5th byte that still has its continuation bit set is
// rejected, matching GetVarint32Ptr's bounds check).
func GetUvarint32(b []byte) (v uint32, rest []byte, ok bool) {
	var x uint64
	x, rest, ok = getUvarint(b, MaxVarint32Bytes)
	return uint32(x), rest, ok
}

// GetUvarint64 parses a varint64 from the front of b.
func GetUvarint64(b []byte) (v uint64, rest []byte, ok bool) {
	return getUvarint(b, MaxVarint64Bytes)
}

func getUvarint(b []byte, maxBytes int) (v uint64, rest []byte, ok bool) {
	var shift uint
	for i := 0; i < len(b) && i < maxBytes; i++ {
		c := b[i]
		if c < 0x80 {
			return v | uint64(c)<<shift, b[i+1:], true
		}
		v |= uint64(c&0x7f) << shift
		shift += 7
	}
	return 0, b, false
}

// PutLengthPrefixedSlice appends varint32(len(s)) || s to dst.
func PutLengthPrefixedSlice(dst []byte, s []byte) []byte {
	dst = PutUvarint32(dst, uint32(len(s)))
	return append(dst, s...)
}

// GetLengthPrefixedSlice parses a varint32(len) || bytes field from the
// front of b, returning the sliced-out field and the remaining suffix.
func GetLengthPrefixedSlice(b []byte) (field, rest []byte, ok bool) {
	n, rest, ok := GetUvarint32(b)
	if !ok || uint32(len(rest)) < n {
		return nil, b, false
	}
	return rest[:n], rest[n:], true
}
