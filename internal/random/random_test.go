package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsDeterministic(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}

func TestSample(t *testing.T) {
	src := New(7)
	in := []int{1, 2, 3, 4, 5, 6, 7, 8}

	t.Run("distinct elements from input", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			out := Sample(src, in, 3)
			require.Len(t, out, 3)
			seen := map[int]bool{}
			for _, v := range out {
				assert.Contains(t, in, v)
				assert.False(t, seen[v], "duplicate %d", v)
				seen[v] = true
			}
		}
	})

	t.Run("clamps k", func(t *testing.T) {
		assert.Len(t, Sample(src, in, 20), len(in))
		assert.Empty(t, Sample(src, in, 0))
		assert.Empty(t, Sample(src, []int{}, 3))
	})

	t.Run("does not modify input", func(t *testing.T) {
		_ = Sample(src, in, 4)
		assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, in)
	})
}

func TestShuffleKeepsElements(t *testing.T) {
	s := []string{"a", "b", "c", "d", "e"}
	Shuffle(New(3), s)
	assert.ElementsMatch(t, []string{"a", "b", "c", "d", "e"}, s)
}

func TestShufflePositionsVary(t *testing.T) {
	src := New(11)
	first := map[string]int{}
	for i := 0; i < 400; i++ {
		s := []string{"a", "b", "c", "d"}
		Shuffle(src, s)
		first[s[0]]++
	}
	// Every element should lead at least sometimes.
	for _, k := range []string{"a", "b", "c", "d"} {
		assert.Greater(t, first[k], 50, k)
	}
}

func TestPick(t *testing.T) {
	_, ok := Pick(New(1), []int{})
	assert.False(t, ok)

	v, ok := Pick(New(1), []int{9})
	assert.True(t, ok)
	assert.Equal(t, 9, v)
}
