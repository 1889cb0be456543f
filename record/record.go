// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package record implements an append-only log of arbitrary byte-string
// records, framed into fixed-size blocks with per-fragment checksums. It
// tolerates torn writes (a record spanning a crash mid-write), detects
// corruption, and can resynchronize with a log that is read starting
// partway through (for recovery that skips records already known to be
// durable elsewhere).
package record

import (
	"github.com/cockroachdb/errors"

	"github.com/tomcat1102/StackDB/internal/crc"
)

// BlockSize is the size of each physical block the log is divided into.
const BlockSize = 32768

// HeaderSize is the size of a physical record's header: a 4-byte masked
// CRC-32C, a 2-byte little-endian length, and a 1-byte type.
const HeaderSize = 7

type recordType byte

const (
	zeroType   recordType = 0 // reserved for pre-allocated file regions
	fullType   recordType = 1
	firstType  recordType = 2
	middleType recordType = 3
	lastType   recordType = 4

	maxRecordType = lastType

	// Sentinels returned by readPhysicalRecord that are not real on-disk
	// type values.
	recEOF       recordType = maxRecordType + 1
	recBadRecord recordType = maxRecordType + 2
)

// typeCRCSeeds[t] is the masked-free CRC-32C of the single byte t, cached
// once so AddRecord/ReadRecord never recompute the checksum of the type
// byte itself.
var typeCRCSeeds [maxRecordType + 1]crc.Value

func init() {
	for t := zeroType; t <= maxRecordType; t++ {
		typeCRCSeeds[t] = crc.New([]byte{byte(t)})
	}
}

var (
	errBadRecordLength   = errors.New("bad record length")
	errChecksumMismatch  = errors.New("checksum mismatch")
	errUnknownRecordType = errors.New("unknown record type")
	errMissingStart      = errors.New("missing start of fragmented record")
	errPartialNoEnd      = errors.New("partial record without end")
)

// Reporter is notified when the reader drops bytes because of detected
// corruption.
type Reporter interface {
	// Corruption is called with the number of bytes dropped and the reason.
	Corruption(bytes int, reason error)
}
