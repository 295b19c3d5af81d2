package crf

import (
	"encoding/json"
	"fmt"
	"os"
)

// modelFile is the on-disk representation of the potentials.
type modelFile struct {
	NumTags          int         `json:"num_tags"`
	StartTransitions []float64   `json:"start_transitions"`
	EndTransitions   []float64   `json:"end_transitions"`
	Transitions      [][]float64 `json:"transitions"`
}

// Save writes the potentials to path as JSON.
func (c *CRF) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads potentials written by Save.
func Load(path string) (*CRF, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("crf: %w", err)
	}
	return Unmarshal(data)
}

// Marshal serializes the potentials to JSON bytes.
func (c *CRF) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(modelFile{
		NumTags:          c.numTags,
		StartTransitions: c.StartTransitions,
		EndTransitions:   c.EndTransitions,
		Transitions:      c.Transitions,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("crf: %w", err)
	}
	return data, nil
}

// Unmarshal deserializes potentials from JSON bytes, rejecting files
// whose tensor sizes disagree with the recorded tag count.
func Unmarshal(data []byte) (*CRF, error) {
	var m modelFile
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("crf: %w", err)
	}
	if m.NumTags < 1 {
		return nil, &ConstructionError{NumTags: m.NumTags}
	}
	if len(m.StartTransitions) != m.NumTags || len(m.EndTransitions) != m.NumTags {
		return nil, fmt.Errorf("crf: corrupt model: expected %d start and end potentials, got %d and %d",
			m.NumTags, len(m.StartTransitions), len(m.EndTransitions))
	}
	if len(m.Transitions) != m.NumTags {
		return nil, fmt.Errorf("crf: corrupt model: expected %d transition rows, got %d",
			m.NumTags, len(m.Transitions))
	}
	for i, row := range m.Transitions {
		if len(row) != m.NumTags {
			return nil, fmt.Errorf("crf: corrupt model: transition row %d has %d entries, expected %d",
				i, len(row), m.NumTags)
		}
	}
	return &CRF{
		numTags:          m.NumTags,
		StartTransitions: m.StartTransitions,
		EndTransitions:   m.EndTransitions,
		Transitions:      m.Transitions,
	}, nil
}
