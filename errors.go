package crf

import "fmt"

// ConstructionError reports an invalid tag count passed to New.
type ConstructionError struct {
	NumTags int
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("crf: invalid number of tags: %d", e.NumTags)
}

// ShapeError reports arguments whose shapes do not line up. The message
// names the expected and actual dimensions.
type ShapeError struct {
	Msg string
}

func (e *ShapeError) Error() string { return "crf: " + e.Msg }

func shapeErrorf(format string, args ...any) error {
	return &ShapeError{Msg: fmt.Sprintf(format, args...)}
}

// InvariantError reports a mask that violates the precondition of the
// dynamic program: the first timestep must be valid for every sequence.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return "crf: " + e.Msg }
