package crf

import "gonum.org/v1/gonum/floats"

// logPartition runs the forward algorithm, returning for each batch
// element the log of the partition function over its valid prefix.
func (c *CRF) logPartition(emissions [][][]float64, mask [][]bool) []float64 {
	alpha := c.forwardScores(emissions, mask)
	seqLen, batch := len(emissions), len(emissions[0])
	logZ := make([]float64, batch)
	final := make([]float64, c.numTags)
	for b := range batch {
		for i := range c.numTags {
			final[i] = alpha[seqLen-1][b][i] + c.EndTransitions[i]
		}
		logZ[b] = floats.LogSumExp(final)
	}
	return logZ
}

// forwardScores computes alpha[t][b][i]: the log-sum-exp, over every tag
// path through the valid positions up to t that ends in tag i, of the
// path score so far (end potential excluded).
//
// A masked step carries the previous accumulator forward unchanged, so
// padded positions are a no-op and the recurrence needs no per-sequence
// length bookkeeping. The full history is kept; the backward recurrence
// in gradient.go reuses it for marginals.
func (c *CRF) forwardScores(emissions [][][]float64, mask [][]bool) [][][]float64 {
	seqLen, batch := len(emissions), len(emissions[0])
	alpha := make([][][]float64, seqLen)

	alpha[0] = make([][]float64, batch)
	for b := range batch {
		alpha[0][b] = make([]float64, c.numTags)
		for i := range c.numTags {
			alpha[0][b][i] = c.StartTransitions[i] + emissions[0][b][i]
		}
	}

	work := make([]float64, c.numTags)
	for t := 1; t < seqLen; t++ {
		alpha[t] = make([][]float64, batch)
		for b := range batch {
			alpha[t][b] = make([]float64, c.numTags)
			if !mask[t][b] {
				copy(alpha[t][b], alpha[t-1][b])
				continue
			}
			for j := range c.numTags {
				for i := range c.numTags {
					work[i] = alpha[t-1][b][i] + c.Transitions[i][j]
				}
				alpha[t][b][j] = floats.LogSumExp(work) + emissions[t][b][j]
			}
		}
	}
	return alpha
}
