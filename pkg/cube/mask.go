package cube

import (
	"fmt"
)

// Mask represents a 2D binary cloud mask. Each entry is 1 where the
// corresponding spatial pixel is classified as cloud and 0 where it is clear.
type Mask struct {
	// Data is the mask values as a 1D array in row-major order,
	// restricted to {0, 1}
	Data []uint8

	// Rows and Cols are the spatial dimensions of the mask
	Rows int
	Cols int
}

// NewMask creates an all-clear mask with the given spatial dimensions.
func NewMask(rows, cols int) (*Mask, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("mask dimensions must be positive, got %dx%d", rows, cols)
	}
	return &Mask{
		Data: make([]uint8, rows*cols),
		Rows: rows,
		Cols: cols,
	}, nil
}

// MaskFromData wraps an existing flat array as a mask. The array is used
// directly, not copied. Values must already be restricted to {0, 1}.
func MaskFromData(data []uint8, rows, cols int) (*Mask, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("mask dimensions must be positive, got %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("data length %d does not match dimensions %dx%d (want %d)",
			len(data), rows, cols, rows*cols)
	}
	for i, v := range data {
		if v > 1 {
			return nil, fmt.Errorf("mask value at index %d is %d, must be 0 or 1", i, v)
		}
	}
	return &Mask{Data: data, Rows: rows, Cols: cols}, nil
}

// At returns the mask value at the given spatial position.
func (m *Mask) At(row, col int) uint8 {
	return m.Data[row*m.Cols+col]
}

// Set stores a mask value at the given spatial position.
func (m *Mask) Set(row, col int, value uint8) {
	m.Data[row*m.Cols+col] = value
}

// CloudCount returns the number of pixels classified as cloud.
func (m *Mask) CloudCount() int {
	count := 0
	for _, v := range m.Data {
		if v == 1 {
			count++
		}
	}
	return count
}

// MatchesCube reports whether the mask's spatial dimensions equal the cube's.
func (m *Mask) MatchesCube(c *Cube) bool {
	return m.Rows == c.Rows && m.Cols == c.Cols
}

// Clone returns a deep copy of the mask with independent storage.
func (m *Mask) Clone() *Mask {
	data := make([]uint8, len(m.Data))
	copy(data, m.Data)
	return &Mask{Data: data, Rows: m.Rows, Cols: m.Cols}
}
