// Copyright 2014 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

//go:build !linux

package vfs

import "golang.org/x/sys/unix"

// fdatasync uses plain fsync(2) on every platform other than Linux,
// darwin included; F_FULLFSYNC is not used.
func fdatasync(fd int) error {
	return unix.Fsync(fd)
}
