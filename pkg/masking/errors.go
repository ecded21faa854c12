package masking

import (
	"fmt"
)

// OutOfRangeError reports a band index outside the cube's spectral dimension.
type OutOfRangeError struct {
	// Band is the requested band index
	Band int

	// Bands is the number of bands in the cube
	Bands int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("band index %d out of range [0, %d)", e.Band, e.Bands)
}

// ShapeMismatchError reports a mask whose spatial dimensions disagree with
// the cube it is being applied to.
type ShapeMismatchError struct {
	// MaskRows, MaskCols are the mask's spatial dimensions
	MaskRows, MaskCols int

	// CubeRows, CubeCols are the cube's spatial dimensions
	CubeRows, CubeCols int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("mask shape %dx%d does not match cube spatial shape %dx%d",
		e.MaskRows, e.MaskCols, e.CubeRows, e.CubeCols)
}

// EmptyInputError reports a zero-sized grid where a non-empty one is required.
type EmptyInputError struct {
	// What names the offending input
	What string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("empty input: %s has no elements", e.What)
}
