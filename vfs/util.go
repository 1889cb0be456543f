// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package vfs

import "io"

// WriteStringToFile writes data to a freshly created name, syncing it
// before returning. It is a thin convenience layered on the Env
// capability contract, matching the source's free function of the same
// name (env.h), not a capability of its own.
func WriteStringToFile(env Env, data string, name string) error {
	f, err := env.NewWritableFile(name)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(f, data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFileToString reads the whole of name into memory.
func ReadFileToString(env Env, name string) (string, error) {
	f, err := env.NewSequentialFile(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf []byte
	chunk := make([]byte, 8192)
	for {
		n, err := f.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return string(buf), nil
}

// Logf writes a formatted line to r (doing nothing when r is nil), the
// counterpart of the source's Env::Log convenience function.
func Logf(r Logger, format string, args ...interface{}) {
	if r == nil {
		return
	}
	r.Infof(format, args...)
}
