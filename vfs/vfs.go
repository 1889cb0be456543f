// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package vfs is the filesystem and clock capability surface consumed by
// the record log, and (by higher, out-of-scope layers) the table reader,
// version manifest, and compaction scheduler. It re-expresses the source's
// abstract-base-class Env/SequentialFile/RandomAccessFile/WritableFile as
// Go interfaces, with a single concrete POSIX backend.
package vfs

import (
	"io"
	"os"
	"strconv"
)

// SequentialFile is read sequentially, from the beginning. It is not safe
// for concurrent use.
type SequentialFile interface {
	// Read reads up to len(buf) bytes, returning how many it read. It may
	// return fewer than len(buf) bytes with a nil error; at end of file it
	// returns 0 and io.EOF.
	Read(buf []byte) (n int, err error)
	// Skip advances the file position by n bytes without reading them.
	Skip(n int64) error
	Close() error
}

// RandomAccessFile may be read from arbitrary offsets. It is safe for
// concurrent use by multiple goroutines.
type RandomAccessFile interface {
	// ReadAt reads len(buf) bytes starting at off into buf, returning the
	// filled prefix. A short read with a nil error never happens except at
	// EOF, where err is io.EOF.
	ReadAt(buf []byte, off int64) (n int, err error)
	Close() error
}

// WritableFile is appended to sequentially. It is not safe for concurrent
// use. Implementations must buffer small appends themselves; Flush and
// Sync have distinct semantics (buffer->OS, and buffer->OS->disk).
type WritableFile interface {
	io.Writer
	// Flush pushes any internally buffered bytes to the OS, without
	// requesting a durability guarantee from the device.
	Flush() error
	// Sync pushes buffered bytes to the OS and then requests the OS flush
	// them to stable storage.
	Sync() error
	Close() error
}

// FileLock represents a held advisory lock on a file, released by passing
// it to Env.UnlockFile.
type FileLock interface {
	Close() error
}

// Logger receives asynchronous informational/error messages, the
// counterpart of the source's Logger.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// EnvOption configures an Env constructed by NewPosixEnv. The CORE has no
// config-loading surface of its own (out of scope), but exposing functional
// options here lets a higher, out-of-scope layer wire real configuration
// (a flags parser, a config file) through to Env construction without this
// package's contract changing underneath it.
type EnvOption func(*envOptions)

type envOptions struct {
	maxOpenFiles int
	mmapLimit    int
}

const (
	defaultMaxOpenFiles = 1000
	defaultMmapLimit    = 1000
)

// WithMaxOpenFiles bounds the number of file descriptors the Env keeps open
// for random-access reads that fall back to read(2) instead of mmap.
func WithMaxOpenFiles(n int) EnvOption {
	return func(o *envOptions) { o.maxOpenFiles = n }
}

// WithMmapLimit bounds the number of concurrently mmap'd random-access
// files. On a 32-bit address space this should be set to 0.
func WithMmapLimit(n int) EnvOption {
	return func(o *envOptions) { o.mmapLimit = n }
}

// Env is the filesystem, clock, and scheduling capability bundle consumed
// by the storage engine's on-disk components.
type Env interface {
	// NewSequentialFile opens name for sequential reads.
	NewSequentialFile(name string) (SequentialFile, error)
	// NewRandomAccessFile opens name for random-access reads.
	NewRandomAccessFile(name string) (RandomAccessFile, error)
	// NewWritableFile creates (truncating if needed) name for writing.
	NewWritableFile(name string) (WritableFile, error)
	// NewAppendableFile opens name for appending, creating it if it does
	// not exist. Unlike the source's default (NotSupported unless a
	// backend overrides it), the POSIX backend implements this directly.
	NewAppendableFile(name string) (WritableFile, error)
	// NewLogger returns a Logger that appends formatted lines to name.
	NewLogger(name string) (Logger, error)

	FileExists(name string) bool
	GetChildren(dir string) ([]string, error)
	GetFileSize(name string) (int64, error)

	RemoveFile(name string) error
	CreateDir(name string) error
	RemoveDir(name string) error
	RenameFile(oldname, newname string) error

	// LockFile acquires an exclusive, non-blocking advisory lock on name,
	// creating it if necessary. It enforces single-holder semantics both
	// across processes (via the OS advisory lock) and within this process
	// (an in-process registry), since POSIX fcntl locks alone are released
	// the moment any file descriptor for the same file is closed by this
	// process, even one the holder didn't intend to unlock.
	LockFile(name string) (FileLock, error)
	// UnlockFile releases a lock obtained from LockFile.
	UnlockFile(lock FileLock) error

	NowMicros() int64
	SleepForMicroseconds(micros int64)

	// Schedule and StartThread are declared by the source's Env for a
	// background work scheduler that lives above the CORE (compaction,
	// etc.). They are not required by anything in this module and return
	// NotSupported.
	Schedule(fn func(arg interface{}), arg interface{}) error
	StartThread(fn func(arg interface{}), arg interface{}) error

	// GetTestDirectory returns a directory suitable for a test run's
	// temporary files.
	GetTestDirectory() (string, error)
}

// GetTestDirectory mirrors the source's Env::Test::TmpDir selection: the
// value of the given environment variable if set, else a euid-qualified
// path under os.TempDir.
func GetTestDirectory(appName, envVar string) (string, error) {
	if d := os.Getenv(envVar); d != "" {
		return d, nil
	}
	dir := os.TempDir() + "/" + appName + "test-" + strconv.Itoa(os.Geteuid())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
