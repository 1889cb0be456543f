// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package dbstatus defines the compact error value shared by every layer of
// the storage engine. A Status is either "ok" (the zero Status) or wraps a
// Code plus a message built with github.com/cockroachdb/errors, so callers
// get both LevelDB-style code checks and full Go error interop
// (errors.Is/As, stack traces via the teacher's error library).
package dbstatus

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
)

// Code identifies the kind of failure a Status represents.
type Code uint8

// The defined status codes. Ok is the zero value so a zero Status is
// trivially "ok" without allocating anything, mirroring the C++ original's
// null-state representation of success.
const (
	Ok Code = iota
	NotFound
	Corruption
	NotSupported
	InvalidArgument
	IOError
)

func (c Code) String() string {
	switch c {
	case Ok:
		return "OK"
	case NotFound:
		return "NotFound"
	case Corruption:
		return "Corruption"
	case NotSupported:
		return "Not implemented"
	case InvalidArgument:
		return "Invalid argument"
	case IOError:
		return "IO error"
	default:
		return "Unknown code"
	}
}

// Status is a compact, comparable error value. The zero Status is success.
type Status struct {
	code Code
	err  error
}

// OK returns the success Status.
func OK() Status { return Status{} }

func newStatus(code Code, msg string, detail string) Status {
	if detail != "" {
		msg = msg + ": " + detail
	}
	return Status{code: code, err: errors.Newf("%s: %s", code, msg)}
}

// NotFoundf builds a NotFound Status.
func NotFoundf(msg string, detail ...string) Status {
	return newStatus(NotFound, msg, firstOrEmpty(detail))
}

// Corruptionf builds a Corruption Status.
func Corruptionf(msg string, detail ...string) Status {
	return newStatus(Corruption, msg, firstOrEmpty(detail))
}

// NotSupportedf builds a NotSupported Status.
func NotSupportedf(msg string, detail ...string) Status {
	return newStatus(NotSupported, msg, firstOrEmpty(detail))
}

// InvalidArgumentf builds an InvalidArgument Status.
func InvalidArgumentf(msg string, detail ...string) Status {
	return newStatus(InvalidArgument, msg, firstOrEmpty(detail))
}

// IOErrorf wraps err (typically from an os/vfs call) as an IOError Status.
// A nil err yields OK. An err for which errors.Is(err, os.ErrNotExist) holds
// is translated into NotFound instead, matching the POSIX backend's
// ENOENT -> NotFound mapping.
func IOErrorf(err error, context string) Status {
	if err == nil {
		return OK()
	}
	if errors.Is(err, os.ErrNotExist) {
		return newStatus(NotFound, context, err.Error())
	}
	return Status{code: IOError, err: errors.Wrapf(err, "%s", context)}
}

func firstOrEmpty(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// OK reports whether s represents success.
func (s Status) OK() bool { return s.err == nil }

// IsNotFound reports whether s is a NotFound status.
func (s Status) IsNotFound() bool { return s.code == NotFound }

// IsCorruption reports whether s is a Corruption status.
func (s Status) IsCorruption() bool { return s.code == Corruption }

// IsNotSupported reports whether s is a NotSupported status.
func (s Status) IsNotSupported() bool { return s.code == NotSupported }

// IsInvalidArgument reports whether s is an InvalidArgument status.
func (s Status) IsInvalidArgument() bool { return s.code == InvalidArgument }

// IsIOError reports whether s is an IOError status.
func (s Status) IsIOError() bool { return s.code == IOError }

// Code returns the status's code. Ok for the zero Status.
func (s Status) Code() Code { return s.code }

// Error implements the error interface so a Status can be returned anywhere
// a Go error is expected.
func (s Status) Error() string {
	if s.err == nil {
		return "OK"
	}
	return s.err.Error()
}

// Unwrap exposes the underlying wrapped error for errors.Is/As.
func (s Status) Unwrap() error { return s.err }

// String implements fmt.Stringer.
func (s Status) String() string { return s.Error() }

var _ error = Status{}
var _ fmt.Stringer = Status{}

// FromError converts a plain error into a Status via IOErrorf (IOError, or
// NotFound for an os.ErrNotExist error), unless it already is a Status (or
// wraps one), in which case that Status is returned unchanged.
func FromError(err error) Status {
	if err == nil {
		return OK()
	}
	var st Status
	if errors.As(err, &st) {
		return st
	}
	return IOErrorf(err, "")
}
