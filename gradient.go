package crf

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Gradients holds the partial derivatives of a reduced log-likelihood
// with respect to the emissions and each potential tensor. Shapes match
// the differentiated quantities; emission entries at masked positions
// are zero.
type Gradients struct {
	Emissions        [][][]float64
	StartTransitions []float64
	EndTransitions   []float64
	Transitions      [][]float64
}

// Marginals returns, for every valid position, the posterior probability
// of each tag given the emissions: out[t][b][k] = P(y_t = k | x_b).
// Masked positions are all zero.
func (c *CRF) Marginals(emissions [][][]float64, mask [][]bool) ([][][]float64, error) {
	if err := c.validate(emissions, nil, mask); err != nil {
		return nil, err
	}
	seqLen, batch := len(emissions), len(emissions[0])
	if mask == nil {
		mask = onesMask(seqLen, batch)
	}

	alpha := c.forwardScores(emissions, mask)
	lengths := maskLengths(mask)

	out := make([][][]float64, seqLen)
	for t := range seqLen {
		out[t] = make([][]float64, batch)
		for b := range batch {
			out[t][b] = make([]float64, c.numTags)
		}
	}

	for b := range batch {
		n := lengths[b]
		beta := c.backwardScores(emissions, b, n)
		logZ := logZFromBeta(alpha[0][b], beta[0])
		for t := range n {
			for k := range c.numTags {
				out[t][b][k] = math.Exp(alpha[t][b][k] + beta[t][k] - logZ)
			}
		}
	}
	return out, nil
}

// LogLikelihoodGrad computes the reduced log-likelihood together with
// its analytic gradients: indicator counts of the observed path minus
// the model expectations obtained from the forward-backward marginals.
// The backward recurrence mirrors the forward one, so the total cost
// stays O(seqLen * batch * numTags^2).
func (c *CRF) LogLikelihoodGrad(emissions [][][]float64, tags [][]int, mask [][]bool) (float64, *Gradients, error) {
	if err := c.validate(emissions, tags, mask); err != nil {
		return 0, nil, err
	}
	seqLen, batch := len(emissions), len(emissions[0])
	if mask == nil {
		mask = onesMask(seqLen, batch)
	}

	alpha := c.forwardScores(emissions, mask)
	lengths := maskLengths(mask)
	scores := c.pathScore(emissions, tags, mask)

	grad := &Gradients{
		Emissions:        make([][][]float64, seqLen),
		StartTransitions: make([]float64, c.numTags),
		EndTransitions:   make([]float64, c.numTags),
		Transitions:      make([][]float64, c.numTags),
	}
	for t := range seqLen {
		grad.Emissions[t] = make([][]float64, batch)
		for b := range batch {
			grad.Emissions[t][b] = make([]float64, c.numTags)
		}
	}
	for i := range c.numTags {
		grad.Transitions[i] = make([]float64, c.numTags)
	}

	llh := 0.0
	for b := range batch {
		n := lengths[b]
		beta := c.backwardScores(emissions, b, n)
		logZ := logZFromBeta(alpha[0][b], beta[0])
		llh += scores[b] - logZ

		// Emissions: indicator minus posterior marginal, valid prefix only.
		for t := range n {
			for k := range c.numTags {
				grad.Emissions[t][b][k] = -math.Exp(alpha[t][b][k] + beta[t][k] - logZ)
			}
			grad.Emissions[t][b][tags[t][b]] += 1
		}

		// Start and end potentials: boundary marginals.
		for i := range c.numTags {
			grad.StartTransitions[i] -= math.Exp(alpha[0][b][i] + beta[0][i] - logZ)
			grad.EndTransitions[i] -= math.Exp(alpha[n-1][b][i] + beta[n-1][i] - logZ)
		}
		grad.StartTransitions[tags[0][b]] += 1
		grad.EndTransitions[tags[n-1][b]] += 1

		// Transitions: pairwise marginals over adjacent valid positions.
		for t := 1; t < n; t++ {
			for i := range c.numTags {
				for j := range c.numTags {
					grad.Transitions[i][j] -= math.Exp(
						alpha[t-1][b][i] + c.Transitions[i][j] + emissions[t][b][j] + beta[t][j] - logZ)
				}
			}
			grad.Transitions[tags[t-1][b]][tags[t][b]] += 1
		}
	}
	return llh, grad, nil
}

// backwardScores computes beta[t][i] for one batch element over its
// valid prefix of length n: the log-sum-exp over every path suffix
// starting with tag i at position t, end potential included.
func (c *CRF) backwardScores(emissions [][][]float64, b, n int) [][]float64 {
	beta := make([][]float64, n)
	beta[n-1] = make([]float64, c.numTags)
	copy(beta[n-1], c.EndTransitions)

	work := make([]float64, c.numTags)
	for t := n - 2; t >= 0; t-- {
		beta[t] = make([]float64, c.numTags)
		for i := range c.numTags {
			for j := range c.numTags {
				work[j] = c.Transitions[i][j] + emissions[t+1][b][j] + beta[t+1][j]
			}
			beta[t][i] = floats.LogSumExp(work)
		}
	}
	return beta
}

// logZFromBeta contracts alpha and beta at one position. With t = 0 it
// recovers the log-partition function computed by the forward pass.
func logZFromBeta(alpha0, beta0 []float64) float64 {
	joint := make([]float64, len(alpha0))
	floats.AddTo(joint, alpha0, beta0)
	return floats.LogSumExp(joint)
}
