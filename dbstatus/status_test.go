package dbstatus

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestOKIsZeroValue(t *testing.T) {
	var s Status
	require.True(t, s.OK())
	require.Equal(t, Ok, s.Code())
	require.Equal(t, "OK", s.Error())
}

func TestConstructors(t *testing.T) {
	cases := []struct {
		s    Status
		code Code
	}{
		{NotFoundf("key"), NotFound},
		{Corruptionf("bad record length"), Corruption},
		{NotSupportedf("schedule"), NotSupported},
		{InvalidArgumentf("comparator mismatch"), InvalidArgument},
		{IOErrorf(errors.New("disk full"), "append"), IOError},
	}
	for _, c := range cases {
		require.False(t, c.s.OK())
		require.Equal(t, c.code, c.s.Code())
		require.NotEmpty(t, c.s.Error())
	}
}

func TestIOErrorfNilIsOK(t *testing.T) {
	require.True(t, IOErrorf(nil, "whatever").OK())
}

func TestFromErrorRoundTrips(t *testing.T) {
	orig := Corruptionf("checksum mismatch")
	wrapped := errors.Wrap(orig, "reading block 3")
	got := FromError(wrapped)
	require.Equal(t, Corruption, got.Code())
}
