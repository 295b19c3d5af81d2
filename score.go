package crf

// pathScore computes the score of one concrete tag path per batch
// element: start potential of the first tag, emission and transition
// terms over the valid prefix, and the end potential of the tag at the
// last valid position. Masked positions contribute nothing.
func (c *CRF) pathScore(emissions [][][]float64, tags [][]int, mask [][]bool) []float64 {
	seqLen, batch := len(emissions), len(emissions[0])
	scores := make([]float64, batch)
	for b := range batch {
		last := tags[0][b]
		scores[b] = c.StartTransitions[last] + emissions[0][b][last]
		for t := 1; t < seqLen; t++ {
			if !mask[t][b] {
				continue
			}
			cur := tags[t][b]
			scores[b] += c.Transitions[last][cur] + emissions[t][b][cur]
			last = cur
		}
		scores[b] += c.EndTransitions[last]
	}
	return scores
}
