// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package record

import (
	"io"

	"github.com/cockroachdb/errors"

	"github.com/tomcat1102/StackDB/internal/coding"
	"github.com/tomcat1102/StackDB/internal/crc"
)

// Reader reads sequentially written, block-framed records, reassembling
// fragmented ones and reporting corruption through an optional Reporter.
// A Reader has a single owner: it is not safe for concurrent use.
type Reader struct {
	r        io.Reader
	reporter Reporter
	checksum bool

	backing [BlockSize]byte
	buf     []byte // unconsumed suffix of the most recently read block
	eof     bool   // r returned io.EOF; buf may still hold a final partial block

	initialOffset     int64
	endOfBufferOffset int64 // file offset just past buf's end
	lastRecordOffset  int64
	resyncing         bool
}

// NewReader returns a Reader over r. If checksum is false, checksum
// verification is skipped. If initialOffset is nonzero, the reader skips
// to the block containing that offset before reading its first record,
// and suppresses corruption reports for fragments it cannot make sense
// of until it resynchronizes on a FIRST or FULL record.
func NewReader(r io.Reader, reporter Reporter, checksum bool, initialOffset int64) *Reader {
	return &Reader{
		r:             r,
		reporter:      reporter,
		checksum:      checksum,
		initialOffset: initialOffset,
		resyncing:     initialOffset > 0,
	}
}

// LastRecordOffset returns the file offset of the first physical fragment
// of the most recently returned logical record.
func (rd *Reader) LastRecordOffset() int64 { return rd.lastRecordOffset }

// ReadRecord returns the next logical record, or ok=false once the log is
// exhausted. The returned slice is valid only until the next call to
// ReadRecord.
func (rd *Reader) ReadRecord() (record []byte, ok bool) {
	if rd.endOfBufferOffset == 0 && rd.initialOffset > 0 {
		if !rd.skipToInitialBlock() {
			return nil, false
		}
	}

	var scratch []byte
	inFragmentedRecord := false
	var prospectiveOffset int64

	for {
		fragment, typ, offset := rd.readPhysicalRecord()

		if rd.resyncing {
			switch typ {
			case middleType, lastType:
				continue
			default:
				rd.resyncing = false
			}
		}

		switch typ {
		case fullType:
			if inFragmentedRecord {
				rd.reportDrop(int64(len(scratch)), errPartialNoEnd)
			}
			scratch = append(scratch[:0], fragment...)
			rd.lastRecordOffset = offset
			return scratch, true

		case firstType:
			if inFragmentedRecord {
				rd.reportDrop(int64(len(scratch)), errPartialNoEnd)
			}
			scratch = append(scratch[:0], fragment...)
			prospectiveOffset = offset
			inFragmentedRecord = true

		case middleType:
			if !inFragmentedRecord {
				rd.reportDrop(int64(len(fragment)), errMissingStart)
			} else {
				scratch = append(scratch, fragment...)
			}

		case lastType:
			if !inFragmentedRecord {
				rd.reportDrop(int64(len(fragment)), errMissingStart)
			} else {
				scratch = append(scratch, fragment...)
				rd.lastRecordOffset = prospectiveOffset
				return scratch, true
			}

		case recEOF:
			// A fragmented record left incomplete by EOF means the writer
			// died mid-write; discard it silently.
			return nil, false

		case recBadRecord:
			if inFragmentedRecord {
				rd.reportDrop(int64(len(scratch)), errPartialNoEnd)
				inFragmentedRecord = false
				scratch = scratch[:0]
			}

		default:
			panic("record: unreachable record type")
		}
	}
}

// readPhysicalRecord returns one physical fragment's payload, its type,
// and the file offset of the start of its header. typ may be recEOF
// (input exhausted) or recBadRecord (corruption already reported, caller
// should treat the in-flight logical record as broken and keep reading).
func (rd *Reader) readPhysicalRecord() (fragment []byte, typ recordType, offset int64) {
	for {
		if len(rd.buf) < HeaderSize {
			if !rd.eof {
				n, err := io.ReadFull(rd.r, rd.backing[:])
				rd.endOfBufferOffset += int64(n)
				switch {
				case err == nil:
					rd.buf = rd.backing[:n]
				case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
					rd.buf = rd.backing[:n]
					rd.eof = true
				default:
					rd.buf = nil
					rd.eof = true
					// The unreadable block lies ahead of the current position,
					// not behind it as reportDrop assumes, and it is never
					// before the initial offset, so it is reported directly.
					if rd.reporter != nil {
						rd.reporter.Corruption(BlockSize, errors.Wrap(err, "read error"))
					}
					return nil, recEOF, 0
				}
				continue
			}
			rd.buf = nil
			return nil, recEOF, 0
		}

		header := rd.buf[:HeaderSize]
		length := int(header[4]) | int(header[5])<<8
		recType := recordType(header[6])

		if HeaderSize+length > len(rd.buf) {
			dropSize := len(rd.buf)
			atEOF := rd.eof
			rd.buf = nil
			if !atEOF {
				rd.reportDrop(int64(dropSize), errBadRecordLength)
				return nil, recBadRecord, 0
			}
			// The writer died mid-record; nothing to report.
			return nil, recEOF, 0
		}

		if recType == zeroType && length == 0 {
			rd.buf = rd.buf[HeaderSize:]
			continue
		}

		data := rd.buf[HeaderSize : HeaderSize+length]
		recordOffset := rd.endOfBufferOffset - int64(len(rd.buf))

		if recType > lastType {
			rd.buf = rd.buf[HeaderSize+length:]
			rd.reportDrop(int64(HeaderSize+length), errUnknownRecordType)
			continue
		}

		if rd.checksum {
			want := crc.Unmask(coding.DecodeFixed32(header[:4]))
			got := crc.Extend(typeCRCSeeds[recType], data)
			if got != want {
				dropSize := len(rd.buf)
				rd.buf = nil
				rd.reportDrop(int64(dropSize), errChecksumMismatch)
				return nil, recBadRecord, 0
			}
		}

		rd.buf = rd.buf[HeaderSize+length:]

		// A record that started before initialOffset was already processed
		// by whoever is recovering the log; skip it silently regardless of
		// its type, the same way skipToInitialBlock skips whole blocks.
		// skipToInitialBlock only rounds down to the containing block, so
		// this is what actually discards the earlier, complete records
		// that land between the block start and initialOffset.
		if recordOffset < rd.initialOffset {
			continue
		}

		return data, recType, recordOffset
	}
}

// skipToInitialBlock seeks (or, if r does not support seeking, drains) to
// the start of the block containing rd.initialOffset, stepping past any
// trailing bytes too small to hold a header.
func (rd *Reader) skipToInitialBlock() bool {
	offsetInBlock := rd.initialOffset % BlockSize
	blockStart := rd.initialOffset - offsetInBlock
	if offsetInBlock > BlockSize-6 {
		blockStart += BlockSize
	}

	rd.endOfBufferOffset = blockStart
	if blockStart == 0 {
		return true
	}

	if seeker, ok := rd.r.(io.Seeker); ok {
		if _, err := seeker.Seek(blockStart, io.SeekStart); err != nil {
			rd.reportDrop(blockStart, err)
			return false
		}
		return true
	}
	if _, err := io.CopyN(io.Discard, rd.r, blockStart); err != nil {
		rd.reportDrop(blockStart, err)
		return false
	}
	return true
}

// reportDrop notifies the Reporter only when the dropped bytes start at or
// after the initial offset (suppressing double-reports during resync).
func (rd *Reader) reportDrop(dropSize int64, reason error) {
	if rd.reporter == nil {
		return
	}
	if rd.endOfBufferOffset-int64(len(rd.buf))-dropSize >= rd.initialOffset {
		rd.reporter.Corruption(int(dropSize), reason)
	}
}
