package memtable

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tomcat1102/StackDB/internal/base"
)

func TestAddAndGetValue(t *testing.T) {
	m := New(base.DefaultComparer.Compare)
	m.Add(1, base.ValueKindValue, []byte("k1"), []byte("v1"))

	lk := base.MakeLookupKey([]byte("k1"), 10)
	val, found, status := m.Get(&lk)
	require.True(t, found)
	require.True(t, status.OK())
	require.Equal(t, []byte("v1"), val)
}

func TestGetMissingKey(t *testing.T) {
	m := New(base.DefaultComparer.Compare)
	m.Add(1, base.ValueKindValue, []byte("k1"), []byte("v1"))

	lk := base.MakeLookupKey([]byte("nope"), 10)
	_, found, status := m.Get(&lk)
	require.False(t, found)
	require.True(t, status.OK())
}

func TestDeletionTombstone(t *testing.T) {
	m := New(base.DefaultComparer.Compare)
	m.Add(1, base.ValueKindValue, []byte("k1"), []byte("v1"))
	m.Add(2, base.ValueKindDeletion, []byte("k1"), nil)

	lk := base.MakeLookupKey([]byte("k1"), 10)
	_, found, status := m.Get(&lk)
	require.True(t, found)
	require.True(t, status.IsNotFound())
}

func TestSnapshotIsolationBySequenceNumber(t *testing.T) {
	m := New(base.DefaultComparer.Compare)
	m.Add(5, base.ValueKindValue, []byte("k1"), []byte("v1"))
	m.Add(10, base.ValueKindValue, []byte("k1"), []byte("v2"))

	// A lookup at seq 7 must see the write at seq 5, not the later one at
	// seq 10, because the newest-first tie-break combined with Seek lands
	// on the first entry with packed(seq,kind) <= the lookup's packed
	// value, i.e. seq <= 7.
	lk := base.MakeLookupKey([]byte("k1"), 7)
	val, found, status := m.Get(&lk)
	require.True(t, found)
	require.True(t, status.OK())
	require.Equal(t, []byte("v1"), val)

	lk2 := base.MakeLookupKey([]byte("k1"), 20)
	val2, found2, status2 := m.Get(&lk2)
	require.True(t, found2)
	require.True(t, status2.OK())
	require.Equal(t, []byte("v2"), val2)
}

func TestIteratorOrderAndContent(t *testing.T) {
	m := New(base.DefaultComparer.Compare)
	m.Add(1, base.ValueKindValue, []byte("b"), []byte("vb"))
	m.Add(2, base.ValueKindValue, []byte("a"), []byte("va"))
	m.Add(3, base.ValueKindValue, []byte("c"), []byte("vc"))

	it := m.NewIterator()
	it.SeekToFirst()

	var keys []string
	var values []string
	for it.Valid() {
		parsed, ok := it.Key().Parse()
		require.True(t, ok)
		keys = append(keys, string(parsed.UserKey))
		values = append(values, string(it.Value()))
		it.Next()
	}
	require.Equal(t, []string{"a", "b", "c"}, keys)
	require.Equal(t, []string{"va", "vb", "vc"}, values)
}

func TestApproximateMemoryUsageGrows(t *testing.T) {
	m := New(base.DefaultComparer.Compare)
	before := m.ApproximateMemoryUsage()
	for i := 0; i < 100; i++ {
		m.Add(base.SeqNum(i+1), base.ValueKindValue, []byte(fmt.Sprintf("key-%03d", i)), []byte("value"))
	}
	require.Greater(t, m.ApproximateMemoryUsage(), before)
}

func TestRefUnref(t *testing.T) {
	m := New(base.DefaultComparer.Compare)
	m.Ref()
	m.Unref()
	m.Unref()
	require.Panics(t, func() { m.Unref() })
}
