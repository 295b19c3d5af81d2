package crf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bruteBestPath maximizes refScore by enumeration. Ties break toward the
// lexicographically first path, which coincides with the decoder's
// lowest-index convention.
func bruteBestPath(c *CRF, emission [][]float64) []int {
	var best []int
	bestScore := 0.0
	for _, p := range allPaths(c.NumTags(), len(emission)) {
		s := refScore(c, emission, p)
		if best == nil || s > bestScore {
			best, bestScore = p, s
		}
	}
	return best
}

func TestDecodeWithoutMask(t *testing.T) {
	c := makeCRF(t, 5)
	rng := testRNG(11)
	seqLen, batch := 3, 2
	emissions := makeEmissions(rng, seqLen, batch, 5)

	paths, err := c.Decode(emissions, nil)
	require.NoError(t, err)
	require.Len(t, paths, batch)

	for b := range batch {
		assert.Equal(t, bruteBestPath(c, column(emissions, b)), paths[b])
	}
}

func TestDecodeWithMask(t *testing.T) {
	c := makeCRF(t, 5)
	rng := testRNG(12)
	seqLen, batch := 3, 2
	emissions := makeEmissions(rng, seqLen, batch, 5)
	mask := [][]bool{
		{true, true},
		{true, true},
		{true, false},
	}

	paths, err := c.Decode(emissions, mask)
	require.NoError(t, err)

	lengths := maskLengths(mask)
	for b := range batch {
		require.Len(t, paths[b], lengths[b])
		assert.Equal(t, bruteBestPath(c, column(emissions, b)[:lengths[b]]), paths[b])
	}
}

func TestDecodeBatchedMatchesLoop(t *testing.T) {
	c := makeCRF(t, 4)
	rng := testRNG(13)
	seqLen, batch := 3, 2
	emissions := makeEmissions(rng, seqLen, batch, 4)
	mask := [][]bool{
		{true, true},
		{true, true},
		{true, false},
	}

	batched, err := c.Decode(emissions, mask)
	require.NoError(t, err)

	for b := range batch {
		one, err := c.Decode(singleEmissions(emissions, b), singleMask(mask, b))
		require.NoError(t, err)
		require.Len(t, one, 1)
		assert.Equal(t, one[0], batched[b])
	}
}

func TestDecodeTieBreaking(t *testing.T) {
	// All-zero potentials and emissions tie every path; the lowest tag
	// index must win at every step, on every call.
	c := &CRF{
		numTags:          3,
		StartTransitions: make([]float64, 3),
		EndTransitions:   make([]float64, 3),
		Transitions:      [][]float64{make([]float64, 3), make([]float64, 3), make([]float64, 3)},
	}
	emissions := makeEmissions(testRNG(14), 3, 1, 3)
	for t2 := range emissions {
		for k := range emissions[t2][0] {
			emissions[t2][0][k] = 0
		}
	}

	first, err := c.Decode(emissions, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 0, 0}}, first)

	second, err := c.Decode(emissions, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecodeMasksProduceTrueLengths(t *testing.T) {
	c := makeCRF(t, 3)
	rng := testRNG(15)
	seqLen, batch := 5, 4
	emissions := makeEmissions(rng, seqLen, batch, 3)
	mask := onesMask(seqLen, batch)
	// Lengths 5, 4, 2, 1.
	wantLengths := []int{5, 4, 2, 1}
	for b, n := range wantLengths {
		for t2 := n; t2 < seqLen; t2++ {
			mask[t2][b] = false
		}
	}

	paths, err := c.Decode(emissions, mask)
	require.NoError(t, err)
	for b, n := range wantLengths {
		assert.Len(t, paths[b], n)
	}
}

func TestDecodeLabels(t *testing.T) {
	ts := NewTagSet("B", "I", "O")
	c := &CRF{
		numTags:          3,
		StartTransitions: []float64{0, 0, 0},
		EndTransitions:   []float64{0, 0, 0},
		Transitions:      [][]float64{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}},
	}
	emissions := [][][]float64{
		{{5, 0, 0}},
		{{0, 5, 0}},
		{{0, 0, 5}},
	}

	labels, err := c.DecodeLabels(ts, emissions, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"B", "I", "O"}}, labels)
}
