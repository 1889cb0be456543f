package bloom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBloomEmptyFilter(t *testing.T) {
	p := NewFilterPolicy(10)
	f := p.CreateFilter(nil, nil)
	require.False(t, p.KeyMayMatch([]byte("hello"), f))
	require.False(t, p.KeyMayMatch([]byte("world"), f))
}

func TestBloomSmallFilter(t *testing.T) {
	p := NewFilterPolicy(10)
	keys := [][]byte{[]byte("hello"), []byte("world")}
	f := p.CreateFilter(keys, nil)
	require.True(t, p.KeyMayMatch([]byte("hello"), f))
	require.True(t, p.KeyMayMatch([]byte("world"), f))
	require.False(t, p.KeyMayMatch([]byte("x"), f))
	require.False(t, p.KeyMayMatch([]byte("foo"), f))
}

func TestBloomVaryingLengthsFalsePositiveRate(t *testing.T) {
	p := NewFilterPolicy(10)
	var mediocre, good int
	for length := 1; length <= 10000; length = nextLength(length) {
		keys := make([][]byte, length)
		for i := range keys {
			keys[i] = keyN(i)
		}
		filter := p.CreateFilter(keys, nil)
		require.LessOrEqual(t, len(filter), (length*10/8)+40)

		for i := 0; i < length; i++ {
			require.True(t, p.KeyMayMatch(keyN(i), filter), "key %d should be present", i)
		}

		falsePositives := 0
		for i := 0; i < 10000; i++ {
			if p.KeyMayMatch(keyN(i+1000000), filter) {
				falsePositives++
			}
		}
		rate := float64(falsePositives) / 10000.0
		if rate > 0.02 {
			t.Fatalf("length=%d: false positive rate %f too high", length, rate)
		}
		if rate > 0.0125 {
			mediocre++
		} else {
			good++
		}
	}
	require.LessOrEqual(t, mediocre, good)
}

func keyN(i int) []byte {
	b := make([]byte, 4)
	b[0] = byte(i)
	b[1] = byte(i >> 8)
	b[2] = byte(i >> 16)
	b[3] = byte(i >> 24)
	return b
}

func nextLength(length int) int {
	if length < 10 {
		return length + 1
	}
	if length < 100 {
		return length + 10
	}
	if length < 1000 {
		return length + 100
	}
	return length + 1000
}

func TestFilterBlockWorkedExample(t *testing.T) {
	policy := NewFilterPolicy(10)
	b := NewFilterBlockBuilder(policy)

	b.StartBlock(0)
	b.AddKey([]byte("foo"))
	b.StartBlock(2000)
	b.AddKey([]byte("bar"))
	b.StartBlock(3100)
	b.AddKey([]byte("box"))
	b.StartBlock(9000)
	b.AddKey([]byte("box"))
	b.AddKey([]byte("hello"))
	block := b.Finish()

	r := NewFilterBlockReader(policy, block)
	require.True(t, r.KeyMayMatch(0, []byte("foo")))
	require.True(t, r.KeyMayMatch(2000, []byte("bar")))
	require.True(t, r.KeyMayMatch(3100, []byte("box")))
	require.False(t, r.KeyMayMatch(4100, []byte("anything")))
	require.True(t, r.KeyMayMatch(9000, []byte("box")))
	require.False(t, r.KeyMayMatch(9000, []byte("foo")))
}

func TestFilterBlockEmptyBuilder(t *testing.T) {
	policy := NewFilterPolicy(10)
	b := NewFilterBlockBuilder(policy)
	block := b.Finish()

	r := NewFilterBlockReader(policy, block)
	require.True(t, r.KeyMayMatch(0, []byte("foo")))
}

func TestFilterBlockOutOfRangeIndexIsSafeSide(t *testing.T) {
	policy := NewFilterPolicy(10)
	b := NewFilterBlockBuilder(policy)
	b.StartBlock(0)
	b.AddKey([]byte("foo"))
	block := b.Finish()

	r := NewFilterBlockReader(policy, block)
	require.True(t, r.KeyMayMatch(1<<20, []byte("whatever")))
}
