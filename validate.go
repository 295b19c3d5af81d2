package crf

// validate runs every shape and range check before any DP state is
// allocated. tags and mask may be nil; for decode-only calls (nil tags)
// the mask is checked against the emissions' leading dimensions.
func (c *CRF) validate(emissions [][][]float64, tags [][]int, mask [][]bool) error {
	if len(emissions) == 0 || len(emissions[0]) == 0 {
		return shapeErrorf("emissions must not be empty")
	}
	seqLen, batch := len(emissions), len(emissions[0])
	for t := range seqLen {
		if len(emissions[t]) != batch {
			return shapeErrorf(
				"emissions must have the same batch size at every timestep, got %d and %d",
				batch, len(emissions[t]))
		}
		for b := range batch {
			if len(emissions[t][b]) != c.numTags {
				return shapeErrorf("expected last dimension of emissions is %d, got %d",
					c.numTags, len(emissions[t][b]))
			}
		}
	}

	if tags != nil {
		tagSeqLen, tagBatch := len(tags), 0
		if tagSeqLen > 0 {
			tagBatch = len(tags[0])
		}
		if tagSeqLen != seqLen || tagBatch != batch {
			return shapeErrorf(
				"the first two dimensions of emissions and tags must match, got (%d, %d) and (%d, %d)",
				seqLen, batch, tagSeqLen, tagBatch)
		}
		for t := range seqLen {
			if len(tags[t]) != batch {
				return shapeErrorf(
					"tags must have the same batch size at every timestep, got %d and %d",
					batch, len(tags[t]))
			}
			for b := range batch {
				if tags[t][b] < 0 || tags[t][b] >= c.numTags {
					return shapeErrorf("tag index out of range: %d not in [0, %d)",
						tags[t][b], c.numTags)
				}
			}
		}
	}

	if mask != nil {
		maskSeqLen, maskBatch := len(mask), 0
		if maskSeqLen > 0 {
			maskBatch = len(mask[0])
		}
		if maskSeqLen != seqLen || maskBatch != batch {
			if tags != nil {
				return shapeErrorf("size of tags and mask must match, got (%d, %d) and (%d, %d)",
					seqLen, batch, maskSeqLen, maskBatch)
			}
			return shapeErrorf(
				"the first two dimensions of emissions and mask must match, got (%d, %d) and (%d, %d)",
				seqLen, batch, maskSeqLen, maskBatch)
		}
		for t := range seqLen {
			if len(mask[t]) != batch {
				return shapeErrorf(
					"mask must have the same batch size at every timestep, got %d and %d",
					batch, len(mask[t]))
			}
		}
		for b := range batch {
			if !mask[0][b] {
				return &InvariantError{Msg: "mask of the first timestep must all be on"}
			}
		}
	}

	return nil
}
