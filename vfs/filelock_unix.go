// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly || solaris

package vfs

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// posixFileLock is the handle returned by LockFile: the open fd that holds
// an advisory fcntl write lock over the whole file.
type posixFileLock struct {
	env  *posixEnv
	name string
	f    *os.File
}

// LockFile acquires a process-exclusive advisory lock on name. fcntl locks
// alone are insufficient: they are released the instant any descriptor
// referring to the same file is closed by this process, even one opened
// independently of the lock holder, so a second, in-process table of
// locked names guards against a second LockFile call within the same
// process succeeding.
func (p *posixEnv) LockFile(name string) (FileLock, error) {
	p.mu.Lock()
	if _, locked := p.lockedFiles[name]; locked {
		p.mu.Unlock()
		return nil, errors.Newf("stackdb/vfs: lock held already by this process: %s", name)
	}
	p.lockedFiles[name] = struct{}{}
	p.mu.Unlock()

	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		p.forgetLock(name)
		return nil, translateErrno(err, name)
	}

	flock := unix.Flock_t{
		Type:   unix.F_WRLCK,
		Whence: int16(io.SeekStart),
		Start:  0,
		Len:    0,
	}
	if err := unix.FcntlFlock(f.Fd(), unix.F_SETLK, &flock); err != nil {
		f.Close()
		p.forgetLock(name)
		return nil, errors.Wrapf(err, "stackdb/vfs: lock %s", name)
	}

	return &posixFileLock{env: p, name: name, f: f}, nil
}

// UnlockFile releases a lock obtained from LockFile.
func (p *posixEnv) UnlockFile(lock FileLock) error {
	l, ok := lock.(*posixFileLock)
	if !ok {
		return errors.Newf("stackdb/vfs: UnlockFile called with a foreign FileLock")
	}
	return l.Close()
}

func (p *posixEnv) forgetLock(name string) {
	p.mu.Lock()
	delete(p.lockedFiles, name)
	p.mu.Unlock()
}

func (l *posixFileLock) Close() error {
	flock := unix.Flock_t{
		Type:   unix.F_UNLCK,
		Whence: int16(io.SeekStart),
		Start:  0,
		Len:    0,
	}
	unlockErr := unix.FcntlFlock(l.f.Fd(), unix.F_SETLK, &flock)
	closeErr := l.f.Close()
	l.env.forgetLock(l.name)
	if unlockErr != nil {
		return errors.Wrapf(unlockErr, "stackdb/vfs: unlock %s", l.name)
	}
	return closeErr
}

var _ FileLock = (*posixFileLock)(nil)
