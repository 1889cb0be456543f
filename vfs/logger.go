// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package vfs

import (
	"log"

	"github.com/cockroachdb/redact"
)

// fileLogger is the POSIX backend's Logger, a thin wrapper over the
// standard library logger. The source's Logger.Logv(fmt, va_list) is a
// convenience tied to one POSIX implementation and not part of the CORE
// contract (see the design notes); this is a structured-enough
// replacement that still matches the teacher's redaction-aware logging
// convention by passing every message through redact.Sprintf before it
// reaches the log.Logger, so argument values are written wrapped in
// redaction markers. The values themselves are still written out, not
// removed.
type fileLogger struct {
	l *log.Logger
}

func newFileLogger(l *log.Logger) *fileLogger {
	return &fileLogger{l: l}
}

func (f *fileLogger) Infof(format string, args ...interface{}) {
	f.l.Print(redact.Sprintf(format, args...))
}

func (f *fileLogger) Errorf(format string, args ...interface{}) {
	f.l.Print("ERROR: ", redact.Sprintf(format, args...))
}

var _ Logger = (*fileLogger)(nil)
