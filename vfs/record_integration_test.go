// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package vfs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tomcat1102/StackDB/record"
)

// TestRecordLogOverPosixFiles exercises the data-flow the spec describes
// end to end: a record.Writer appending to a real vfs.WritableFile, and a
// record.Reader reading the result back from a real vfs.SequentialFile.
func TestRecordLogOverPosixFiles(t *testing.T) {
	env := NewPosixEnv()
	dir := t.TempDir()
	name := filepath.Join(dir, "000001.log")

	wf, err := env.NewWritableFile(name)
	require.NoError(t, err)

	w := record.NewWriter(wf)
	want := [][]byte{[]byte("foo"), []byte("bar"), []byte(""), []byte("xxxx")}
	for _, rec := range want {
		require.NoError(t, w.AddRecord(rec))
	}
	require.NoError(t, wf.Close())

	sf, err := env.NewSequentialFile(name)
	require.NoError(t, err)
	defer sf.Close()

	rd := record.NewReader(sequentialFileAsReader{sf}, nil, true, 0)
	var got [][]byte
	for {
		rec, ok := rd.ReadRecord()
		if !ok {
			break
		}
		got = append(got, append([]byte{}, rec...))
	}
	require.Equal(t, want, got)
}

// sequentialFileAsReader adapts a SequentialFile (Read/Skip/Close) to
// io.Reader, the shape record.NewReader expects; a higher, out-of-scope
// layer would own this same adapter when wiring the WAL to a real Env.
type sequentialFileAsReader struct {
	f SequentialFile
}

func (s sequentialFileAsReader) Read(p []byte) (int, error) {
	return s.f.Read(p)
}
