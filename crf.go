// Package crf implements a linear-chain Conditional Random Field over
// batched, variable-length tag sequences.
//
// The caller supplies per-position, per-tag emission scores; the CRF owns
// the start, end and pairwise transition potentials. The package computes
// exact sequence log-likelihoods (forward algorithm) and best tag paths
// (Viterbi decoding), both under an optional validity mask encoding true
// sequence lengths within a padded batch.
//
//	c, _ := crf.New(5)
//	llh, _ := c.LogLikelihood(emissions, tags, mask)
//	paths, _ := c.Decode(emissions, mask)
//
// Shapes follow the (seqLen, batch, numTags) convention: emissions are
// indexed [t][b][tag], tags and mask are indexed [t][b]. A nil mask means
// every position is valid. When a mask is given, each column must be a
// prefix of true values and the first timestep must be all true.
package crf

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// CRF holds the potentials of a linear-chain conditional random field
// over a fixed set of numTags tags.
//
// Transitions[i][j] is the score of moving from tag i to tag j;
// StartTransitions and EndTransitions score the first and last tag of a
// sequence. The potentials are read-only during Score, LogPartition,
// Marginals and Decode calls, so concurrent calls sharing one CRF are
// safe as long as nothing mutates the potentials mid-flight.
type CRF struct {
	numTags int

	StartTransitions []float64
	EndTransitions   []float64
	Transitions      [][]float64
}

// New creates a CRF with numTags tags, all potentials drawn uniformly
// from [-0.1, 0.1). numTags must be at least 1.
func New(numTags int) (*CRF, error) {
	return newCRF(numTags, distuv.Uniform{Min: -0.1, Max: 0.1})
}

// NewSeeded is New with a deterministic random source.
func NewSeeded(numTags int, seed uint64) (*CRF, error) {
	u := distuv.Uniform{Min: -0.1, Max: 0.1, Src: rand.NewPCG(seed, seed)}
	return newCRF(numTags, u)
}

func newCRF(numTags int, u distuv.Uniform) (*CRF, error) {
	if numTags < 1 {
		return nil, &ConstructionError{NumTags: numTags}
	}
	c := &CRF{
		numTags:          numTags,
		StartTransitions: make([]float64, numTags),
		EndTransitions:   make([]float64, numTags),
		Transitions:      make([][]float64, numTags),
	}
	for i := range numTags {
		c.Transitions[i] = make([]float64, numTags)
	}
	c.reset(u)
	return c, nil
}

// ResetParameters redraws all potentials uniformly from [-0.1, 0.1).
func (c *CRF) ResetParameters() {
	c.reset(distuv.Uniform{Min: -0.1, Max: 0.1})
}

func (c *CRF) reset(u distuv.Uniform) {
	for i := range c.numTags {
		c.StartTransitions[i] = u.Rand()
		c.EndTransitions[i] = u.Rand()
		for j := range c.numTags {
			c.Transitions[i][j] = u.Rand()
		}
	}
}

// NumTags returns the number of tags the CRF was constructed with.
func (c *CRF) NumTags() int { return c.numTags }

func (c *CRF) String() string {
	return fmt.Sprintf("CRF(num_tags=%d)", c.numTags)
}

// Score returns the exact score of the observed tag path for each batch
// element, counting only its mask-valid prefix. The end transition is
// taken at the last valid position, not the last padded one.
func (c *CRF) Score(emissions [][][]float64, tags [][]int, mask [][]bool) ([]float64, error) {
	if err := c.validate(emissions, tags, mask); err != nil {
		return nil, err
	}
	if mask == nil {
		mask = onesMask(len(emissions), len(emissions[0]))
	}
	return c.pathScore(emissions, tags, mask), nil
}

// LogPartition returns, for each batch element, the log of the sum of
// exponentiated scores over every possible tag path of its valid prefix.
func (c *CRF) LogPartition(emissions [][][]float64, mask [][]bool) ([]float64, error) {
	if err := c.validate(emissions, nil, mask); err != nil {
		return nil, err
	}
	if mask == nil {
		mask = onesMask(len(emissions), len(emissions[0]))
	}
	return c.logPartition(emissions, mask), nil
}

// LogLikelihood returns the log-likelihood of the observed tag sequences
// summed over the batch. No normalization by batch size or sequence
// length is applied; callers needing a mean must divide themselves.
func (c *CRF) LogLikelihood(emissions [][][]float64, tags [][]int, mask [][]bool) (float64, error) {
	llh, err := c.BatchLogLikelihood(emissions, tags, mask)
	if err != nil {
		return 0, err
	}
	return floats.Sum(llh), nil
}

// BatchLogLikelihood returns one log-likelihood per batch element,
// unreduced.
func (c *CRF) BatchLogLikelihood(emissions [][][]float64, tags [][]int, mask [][]bool) ([]float64, error) {
	if err := c.validate(emissions, tags, mask); err != nil {
		return nil, err
	}
	if mask == nil {
		mask = onesMask(len(emissions), len(emissions[0]))
	}
	llh := c.pathScore(emissions, tags, mask)
	floats.Sub(llh, c.logPartition(emissions, mask))
	return llh, nil
}

// Decode returns the highest-scoring tag sequence for each batch
// element, each of its true (mask-derived) length.
func (c *CRF) Decode(emissions [][][]float64, mask [][]bool) ([][]int, error) {
	if err := c.validate(emissions, nil, mask); err != nil {
		return nil, err
	}
	if mask == nil {
		mask = onesMask(len(emissions), len(emissions[0]))
	}
	return c.viterbiDecode(emissions, mask), nil
}

// onesMask builds an all-valid mask of the given shape.
func onesMask(seqLen, batch int) [][]bool {
	m := make([][]bool, seqLen)
	for t := range m {
		m[t] = make([]bool, batch)
		for b := range m[t] {
			m[t][b] = true
		}
	}
	return m
}

// maskLengths returns the number of valid positions per batch element.
func maskLengths(mask [][]bool) []int {
	lengths := make([]int, len(mask[0]))
	for t := range mask {
		for b, on := range mask[t] {
			if on {
				lengths[b]++
			}
		}
	}
	return lengths
}
