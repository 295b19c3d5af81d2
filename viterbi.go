package crf

import "gonum.org/v1/gonum/floats"

// viterbiDecode finds the highest-scoring tag path per batch element
// over its valid prefix. Same recurrence as forwardScores with max and
// argmax in place of log-sum-exp, plus backpointers for reconstruction.
// Ties go to the lowest source tag index, consistently across calls.
func (c *CRF) viterbiDecode(emissions [][][]float64, mask [][]bool) [][]int {
	seqLen, batch := len(emissions), len(emissions[0])

	// delta[t][b][j]: best score of any valid-prefix path ending in tag j
	// at step t. psi[t][b][j]: the source tag realizing it.
	delta := make([][][]float64, seqLen)
	psi := make([][][]int, seqLen)

	delta[0] = make([][]float64, batch)
	for b := range batch {
		delta[0][b] = make([]float64, c.numTags)
		for i := range c.numTags {
			delta[0][b][i] = c.StartTransitions[i] + emissions[0][b][i]
		}
	}

	work := make([]float64, c.numTags)
	for t := 1; t < seqLen; t++ {
		delta[t] = make([][]float64, batch)
		psi[t] = make([][]int, batch)
		for b := range batch {
			delta[t][b] = make([]float64, c.numTags)
			if !mask[t][b] {
				// Masked step: carry forward, no backpointer recorded.
				copy(delta[t][b], delta[t-1][b])
				continue
			}
			psi[t][b] = make([]int, c.numTags)
			for j := range c.numTags {
				for i := range c.numTags {
					work[i] = delta[t-1][b][i] + c.Transitions[i][j]
				}
				best := floats.MaxIdx(work)
				delta[t][b][j] = work[best] + emissions[t][b][j]
				psi[t][b][j] = best
			}
		}
	}

	final := make([]float64, c.numTags)
	paths := make([][]int, batch)
	for b := range batch {
		// Carry-forward makes delta at the last padded position equal to
		// delta at the last valid one, so the terminal choice indexes the
		// true length implicitly.
		for i := range c.numTags {
			final[i] = delta[seqLen-1][b][i] + c.EndTransitions[i]
		}
		cur := floats.MaxIdx(final)

		path := []int{cur}
		for t := seqLen - 1; t >= 1; t-- {
			if !mask[t][b] {
				continue
			}
			cur = psi[t][b][cur]
			path = append(path, cur)
		}
		for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
			path[i], path[j] = path[j], path[i]
		}
		paths[b] = path
	}
	return paths
}
