// Copyright 2014 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

//go:build linux

package vfs

import "golang.org/x/sys/unix"

// fdatasync flushes a file's data (and only as much metadata as is needed
// to retrieve it) to stable storage, skipping the full metadata flush
// fsync(2) would otherwise force.
func fdatasync(fd int) error {
	return unix.Fdatasync(fd)
}
