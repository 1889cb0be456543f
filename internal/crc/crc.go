// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package crc implements the masked CRC-32C (Castagnoli) checksum used to
// protect each record-log fragment. Masking a CRC before storing it next to
// the data it protects means that a CRC of a CRC is trivially distinguishable
// from a CRC of the underlying data.
package crc

import "hash/crc32"

// maskDelta is added, after rotation, to every raw CRC before it is stored.
const maskDelta uint32 = 0xa282ead8

var table = crc32.MakeTable(crc32.Castagnoli)

// Value is a CRC-32C checksum.
type Value uint32

// New returns the CRC-32C checksum of b.
func New(b []byte) Value {
	return Value(crc32.Checksum(b, table))
}

// Extend returns the CRC-32C checksum of the concatenation of some prior
// data (whose checksum was v) and b, without needing the prior data again.
func Extend(v Value, b []byte) Value {
	return Value(crc32.Update(uint32(v), table, b))
}

// Mask returns a masked representation of v, suitable for storing alongside
// the data it protects.
func (v Value) Mask() uint32 {
	x := uint32(v)
	rotated := (x >> 15) | (x << 17)
	return rotated + maskDelta
}

// Unmask reverses Mask, recovering the raw CRC-32C value.
func Unmask(masked uint32) Value {
	rot := masked - maskDelta
	return Value((rot >> 17) | (rot << 15))
}
