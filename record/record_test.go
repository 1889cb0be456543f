package record

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type bufReporter struct {
	drops   []int
	reasons []string
}

func (r *bufReporter) Corruption(bytes int, reason error) {
	r.drops = append(r.drops, bytes)
	r.reasons = append(r.reasons, reason.Error())
}

func writeRecords(t *testing.T, records [][]byte) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, r := range records {
		require.NoError(t, w.AddRecord(r))
	}
	return &buf
}

func readAll(r *Reader) [][]byte {
	var out [][]byte
	for {
		rec, ok := r.ReadRecord()
		if !ok {
			return out
		}
		out = append(out, append([]byte{}, rec...))
	}
}

func TestSmallRecordsRoundTrip(t *testing.T) {
	records := [][]byte{
		[]byte(""),
		[]byte("a"),
		[]byte("foo"),
		bytes.Repeat([]byte("x"), 100),
	}
	buf := writeRecords(t, records)

	r := NewReader(bytes.NewReader(buf.Bytes()), nil, true, 0)
	got := readAll(r)
	require.Equal(t, records, got)
}

func TestLargeRecordSpansMultipleBlocks(t *testing.T) {
	big := bytes.Repeat([]byte("y"), 100000)
	buf := writeRecords(t, [][]byte{big})

	r := NewReader(bytes.NewReader(buf.Bytes()), nil, true, 0)
	got := readAll(r)
	require.Len(t, got, 1)
	require.Equal(t, big, got[0])
}

func TestMultipleLargeRecords(t *testing.T) {
	r1 := bytes.Repeat([]byte("a"), 50000)
	r2 := bytes.Repeat([]byte("b"), 100000)
	r3 := []byte("small")
	buf := writeRecords(t, [][]byte{r1, r2, r3})

	rd := NewReader(bytes.NewReader(buf.Bytes()), nil, true, 0)
	got := readAll(rd)
	require.Equal(t, [][]byte{r1, r2, r3}, got)
}

func TestLastRecordOffset(t *testing.T) {
	buf := writeRecords(t, [][]byte{[]byte("a"), []byte("bb"), []byte("ccc")})
	rd := NewReader(bytes.NewReader(buf.Bytes()), nil, true, 0)

	_, ok := rd.ReadRecord()
	require.True(t, ok)
	require.Equal(t, int64(0), rd.LastRecordOffset())

	_, ok = rd.ReadRecord()
	require.True(t, ok)
	require.Equal(t, int64(HeaderSize+1), rd.LastRecordOffset())
}

func TestUnknownRecordTypeReported(t *testing.T) {
	buf := writeRecords(t, [][]byte{[]byte("hello")})
	data := buf.Bytes()
	data[6] = 5 // corrupt the type byte of the single FULL record

	rep := &bufReporter{}
	rd := NewReader(bytes.NewReader(data), rep, true, 0)
	_, ok := rd.ReadRecord()
	require.False(t, ok)
	require.Len(t, rep.reasons, 1)
	require.Contains(t, rep.reasons[0], "unknown record type")
}

func TestBadRecordLengthReported(t *testing.T) {
	// The first record fills the first block exactly, so its inflated
	// length runs past a full block rather than past the end of the file
	// (which would be treated as a writer dying mid-record, not reported).
	buf := writeRecords(t, [][]byte{bytes.Repeat([]byte("b"), BlockSize-HeaderSize), []byte("foo")})
	data := buf.Bytes()
	data[4]++ // inflate the declared length past what's actually buffered

	rep := &bufReporter{}
	rd := NewReader(bytes.NewReader(data), rep, true, 0)
	rec, ok := rd.ReadRecord()
	require.True(t, ok)
	require.Equal(t, "foo", string(rec))
	require.Len(t, rep.reasons, 1)
	require.Contains(t, rep.reasons[0], "bad record length")
}

func TestChecksumMismatchReported(t *testing.T) {
	buf := writeRecords(t, [][]byte{[]byte("hello")})
	data := buf.Bytes()
	data[0] ^= 0xff // perturb a CRC byte

	rep := &bufReporter{}
	rd := NewReader(bytes.NewReader(data), rep, true, 0)
	_, ok := rd.ReadRecord()
	require.False(t, ok)
	require.Len(t, rep.reasons, 1)
	require.Contains(t, rep.reasons[0], "checksum mismatch")
}

func TestMissingStartOfFragmentedRecord(t *testing.T) {
	// Hand-build a log containing a bare MIDDLE fragment with no FIRST.
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.emitPhysicalRecord(middleType, []byte("oops")))

	rep := &bufReporter{}
	rd := NewReader(bytes.NewReader(buf.Bytes()), rep, true, 0)
	_, ok := rd.ReadRecord()
	require.False(t, ok)
	require.Len(t, rep.reasons, 1)
	require.Contains(t, rep.reasons[0], "missing start of fragmented record")
}

func TestPartialRecordWithoutEnd(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.emitPhysicalRecord(firstType, []byte("partial-one")))
	require.NoError(t, w.AddRecord([]byte("complete")))

	rep := &bufReporter{}
	rd := NewReader(bytes.NewReader(buf.Bytes()), rep, true, 0)
	rec, ok := rd.ReadRecord()
	require.True(t, ok)
	require.Equal(t, "complete", string(rec))
	require.Len(t, rep.reasons, 1)
	require.Contains(t, rep.reasons[0], "partial record without end")
}

func TestChecksumDisabled(t *testing.T) {
	buf := writeRecords(t, [][]byte{[]byte("hello")})
	data := buf.Bytes()
	data[0] ^= 0xff

	rd := NewReader(bytes.NewReader(data), nil, false, 0)
	rec, ok := rd.ReadRecord()
	require.True(t, ok)
	require.Equal(t, "hello", string(rec))
}

func TestInitialOffsetSkipsEarlierRecords(t *testing.T) {
	small := []byte("tiny")
	big := bytes.Repeat([]byte("z"), 80000) // spans several blocks
	buf := writeRecords(t, [][]byte{small, big})

	// Find the offset of the big record's FIRST fragment: it starts right
	// after the small record's single physical fragment.
	offset := int64(HeaderSize + len(small))

	rep := &bufReporter{}
	rd := NewReader(bytes.NewReader(buf.Bytes()), rep, true, offset)
	rec, ok := rd.ReadRecord()
	require.True(t, ok)
	require.Equal(t, big, rec)
	require.Empty(t, rep.reasons)
}

func TestEmptyRecordIsLegal(t *testing.T) {
	buf := writeRecords(t, [][]byte{[]byte("")})
	rd := NewReader(bytes.NewReader(buf.Bytes()), nil, true, 0)
	rec, ok := rd.ReadRecord()
	require.True(t, ok)
	require.Equal(t, "", string(rec))
}

func TestZeroLengthZeroTypeIsPadding(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.emitPhysicalRecord(zeroType, nil))
	require.NoError(t, w.AddRecord([]byte("after-padding")))

	rd := NewReader(bytes.NewReader(buf.Bytes()), nil, true, 0)
	rec, ok := rd.ReadRecord()
	require.True(t, ok)
	require.Equal(t, "after-padding", string(rec))
}

func TestReasonStringsMatchExactly(t *testing.T) {
	require.Equal(t, "bad record length", errBadRecordLength.Error())
	require.Equal(t, "checksum mismatch", errChecksumMismatch.Error())
	require.True(t, strings.Contains(errUnknownRecordType.Error(), "unknown record type"))
	require.Equal(t, "missing start of fragmented record", errMissingStart.Error())
	require.Equal(t, "partial record without end", errPartialNoEnd.Error())
}
