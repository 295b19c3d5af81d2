package crf

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelSaveLoad(t *testing.T) {
	c := makeCRF(t, 4)
	path := filepath.Join(t.TempDir(), "crf.json")

	require.NoError(t, c.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, c.NumTags(), loaded.NumTags())
	assert.Equal(t, c.StartTransitions, loaded.StartTransitions)
	assert.Equal(t, c.EndTransitions, loaded.EndTransitions)
	assert.Equal(t, c.Transitions, loaded.Transitions)

	// The reloaded model must score and decode identically.
	rng := testRNG(31)
	emissions := makeEmissions(rng, 3, 2, 4)
	tags := makeTags(rng, 3, 2, 4)

	wantLLH, err := c.LogLikelihood(emissions, tags, nil)
	require.NoError(t, err)
	gotLLH, err := loaded.LogLikelihood(emissions, tags, nil)
	require.NoError(t, err)
	assert.Equal(t, wantLLH, gotLLH)

	wantPaths, err := c.Decode(emissions, nil)
	require.NoError(t, err)
	gotPaths, err := loaded.Decode(emissions, nil)
	require.NoError(t, err)
	assert.Equal(t, wantPaths, gotPaths)
}

func TestModelMarshalRoundTrip(t *testing.T) {
	c := makeCRF(t, 2)
	data, err := c.Marshal()
	require.NoError(t, err)

	loaded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, c.Transitions, loaded.Transitions)
}

func TestModelUnmarshalRejectsCorruptData(t *testing.T) {
	_, err := Unmarshal([]byte("{not json"))
	assert.Error(t, err)

	_, err = Unmarshal([]byte(`{"num_tags": 0}`))
	var cerr *ConstructionError
	require.ErrorAs(t, err, &cerr)

	_, err = Unmarshal([]byte(
		`{"num_tags": 2, "start_transitions": [0.1], "end_transitions": [0.1, 0.2], "transitions": [[0,0],[0,0]]}`))
	assert.ErrorContains(t, err, "corrupt model")

	_, err = Unmarshal([]byte(
		`{"num_tags": 2, "start_transitions": [0.1, 0.2], "end_transitions": [0.1, 0.2], "transitions": [[0,0],[0]]}`))
	assert.ErrorContains(t, err, "transition row 1 has 1 entries, expected 2")

	_, err = Unmarshal([]byte(
		`{"num_tags": 2, "start_transitions": [0.1, 0.2], "end_transitions": [0.1, 0.2], "transitions": [[0,0]]}`))
	assert.ErrorContains(t, err, "expected 2 transition rows, got 1")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
