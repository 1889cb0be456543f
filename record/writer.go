// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package record

import (
	"io"

	"github.com/tomcat1102/StackDB/internal/coding"
	"github.com/tomcat1102/StackDB/internal/crc"
)

// flusher is implemented by writers (such as a vfs.WritableFile) that
// distinguish "handed to the OS" from "buffered locally"; the log writer
// flushes after every physical record so a reader tailing the file sees
// it promptly.
type flusher interface {
	Flush() error
}

// Writer appends records to an underlying io.Writer, framing them into
// BlockSize blocks. A Writer has a single owner: it is not safe for
// concurrent use.
type Writer struct {
	w           io.Writer
	blockOffset int // bytes already written in the current block
}

// NewWriter returns a Writer that appends to w starting at the beginning
// of a fresh block.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// NewWriterWithOffset returns a Writer that appends to w, which already
// contains initialOffset bytes of a previously written log (so framing
// continues from the correct position within the current block).
func NewWriterWithOffset(w io.Writer, initialOffset int64) *Writer {
	return &Writer{w: w, blockOffset: int(initialOffset % BlockSize)}
}

// AddRecord appends payload as one or more physical fragments. Empty
// payloads are legal and produce a single zero-length FULL fragment.
func (wr *Writer) AddRecord(payload []byte) error {
	begin := true
	for {
		leftover := BlockSize - wr.blockOffset
		if leftover < HeaderSize {
			if leftover > 0 {
				if _, err := wr.w.Write(make([]byte, leftover)); err != nil {
					return err
				}
			}
			wr.blockOffset = 0
		}

		avail := BlockSize - wr.blockOffset - HeaderSize
		fragmentLen := len(payload)
		end := true
		if fragmentLen > avail {
			fragmentLen = avail
			end = false
		}

		var typ recordType
		switch {
		case begin && end:
			typ = fullType
		case begin:
			typ = firstType
		case end:
			typ = lastType
		default:
			typ = middleType
		}

		if err := wr.emitPhysicalRecord(typ, payload[:fragmentLen]); err != nil {
			return err
		}
		payload = payload[fragmentLen:]
		begin = false
		if end {
			return nil
		}
	}
}

func (wr *Writer) emitPhysicalRecord(typ recordType, data []byte) error {
	n := len(data)

	var header [HeaderSize]byte
	c := crc.Extend(typeCRCSeeds[typ], data)
	masked := c.Mask()
	coding.PutFixed32(header[:0], masked)
	header[4] = byte(n)
	header[5] = byte(n >> 8)
	header[6] = byte(typ)

	if _, err := wr.w.Write(header[:]); err != nil {
		return err
	}
	if n > 0 {
		if _, err := wr.w.Write(data); err != nil {
			return err
		}
	}
	if f, ok := wr.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return err
		}
	}
	wr.blockOffset += HeaderSize + n
	return nil
}
