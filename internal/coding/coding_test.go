package coding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixed32RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 0xff, 0x1234, 0xffffffff} {
		got := DecodeFixed32(PutFixed32(nil, v))
		require.Equal(t, v, got)
	}
}

func TestFixed64RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 0xff, 0x123456789abcdef0, 0xffffffffffffffff} {
		got := DecodeFixed64(PutFixed64(nil, v))
		require.Equal(t, v, got)
	}
}

func TestVarint32RoundTrip(t *testing.T) {
	values := []uint32{0, 1, 127, 128, 16383, 16384, 1 << 30, 0xffffffff}
	for _, v := range values {
		enc := PutUvarint32(nil, v)
		require.Equal(t, LenUvarint32(v), len(enc))
		got, rest, ok := GetUvarint32(enc)
		require.True(t, ok)
		require.Empty(t, rest)
		require.Equal(t, v, got)
	}
}

func TestVarint64RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 1 << 40, 0xffffffffffffffff}
	for _, v := range values {
		enc := PutUvarint64(nil, v)
		require.Equal(t, LenUvarint64(v), len(enc))
		got, rest, ok := GetUvarint64(enc)
		require.True(t, ok)
		require.Empty(t, rest)
		require.Equal(t, v, got)
	}
}

func TestVarint32RejectsTooManyContinuationBytes(t *testing.T) {
	// Five bytes, all with the continuation bit set: no terminator within
	// MaxVarint32Bytes.
	b := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	_, _, ok := GetUvarint32(b)
	require.False(t, ok)
}

func TestLengthPrefixedSliceRoundTrip(t *testing.T) {
	s := []byte("hello world")
	enc := PutLengthPrefixedSlice(nil, s)
	got, rest, ok := GetLengthPrefixedSlice(enc)
	require.True(t, ok)
	require.Empty(t, rest)
	require.Equal(t, s, got)
}

func TestGetLengthPrefixedSliceTruncated(t *testing.T) {
	enc := PutUvarint32(nil, 10)
	enc = append(enc, []byte("abc")...)
	_, _, ok := GetLengthPrefixedSlice(enc)
	require.False(t, ok)
}
