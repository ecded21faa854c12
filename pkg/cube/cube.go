// Package cube provides the in-memory data model for hyperspectral radiance
// datacubes and the binary cloud masks derived from them.
package cube

import (
	"fmt"
)

// Cube represents a hyperspectral radiance datacube. The data is stored as a
// 1D array in row-major order, indexed by (row, col, band): the spectral
// values of one spatial pixel are contiguous in memory.
type Cube struct {
	// Data is the radiance values as a 1D array in row-major order
	Data []float64

	// Rows is the number of spatial rows in the cube
	Rows int

	// Cols is the number of spatial columns in the cube
	Cols int

	// Bands is the number of spectral bands in the cube
	Bands int
}

// New creates a cube with the given dimensions and zero-valued radiance data.
//
// Returns an error if any dimension is not positive.
func New(rows, cols, bands int) (*Cube, error) {
	if rows <= 0 || cols <= 0 || bands <= 0 {
		return nil, fmt.Errorf("cube dimensions must be positive, got %dx%dx%d", rows, cols, bands)
	}
	return &Cube{
		Data:  make([]float64, rows*cols*bands),
		Rows:  rows,
		Cols:  cols,
		Bands: bands,
	}, nil
}

// FromData wraps an existing flat data array as a cube with the given
// dimensions. The array is used directly, not copied.
//
// Returns an error if the dimensions are not positive or if the data length
// does not equal rows*cols*bands.
func FromData(data []float64, rows, cols, bands int) (*Cube, error) {
	if rows <= 0 || cols <= 0 || bands <= 0 {
		return nil, fmt.Errorf("cube dimensions must be positive, got %dx%dx%d", rows, cols, bands)
	}
	if len(data) != rows*cols*bands {
		return nil, fmt.Errorf("data length %d does not match dimensions %dx%dx%d (want %d)",
			len(data), rows, cols, bands, rows*cols*bands)
	}
	return &Cube{Data: data, Rows: rows, Cols: cols, Bands: bands}, nil
}

// index returns the flat index of (row, col, band). Bounds are the caller's
// responsibility.
func (c *Cube) index(row, col, band int) int {
	return (row*c.Cols+col)*c.Bands + band
}

// At returns the radiance value at the given spatial position and band.
func (c *Cube) At(row, col, band int) float64 {
	return c.Data[c.index(row, col, band)]
}

// Set stores a radiance value at the given spatial position and band.
func (c *Cube) Set(row, col, band int, value float64) {
	c.Data[c.index(row, col, band)] = value
}

// ValidBand reports whether band is a valid index into the cube's spectral
// dimension.
func (c *Cube) ValidBand(band int) bool {
	return band >= 0 && band < c.Bands
}

// Band extracts a single spectral band as a 2D slice in row-major order
// (rows x cols). The returned slice is freshly allocated and does not alias
// the cube's storage.
//
// Returns an error if band is outside [0, Bands).
func (c *Cube) Band(band int) ([]float64, error) {
	if !c.ValidBand(band) {
		return nil, fmt.Errorf("band %d exceeds cube bands %d", band, c.Bands)
	}

	slice := make([]float64, c.Rows*c.Cols)
	for row := 0; row < c.Rows; row++ {
		for col := 0; col < c.Cols; col++ {
			slice[row*c.Cols+col] = c.At(row, col, band)
		}
	}
	return slice, nil
}

// Spectrum extracts the full spectral signature of one spatial pixel.
// The returned slice is a fresh copy.
//
// Returns an error if the position is outside the cube's spatial extent.
func (c *Cube) Spectrum(row, col int) ([]float64, error) {
	if row < 0 || row >= c.Rows || col < 0 || col >= c.Cols {
		return nil, fmt.Errorf("position (%d,%d) outside cube extent %dx%d", row, col, c.Rows, c.Cols)
	}

	spectrum := make([]float64, c.Bands)
	start := c.index(row, col, 0)
	copy(spectrum, c.Data[start:start+c.Bands])
	return spectrum, nil
}

// Region extracts a 3D subregion from the cube, spanning all bands over the
// given spatial window. The result is a new cube with independent storage.
func (c *Cube) Region(startRow, startCol, numRows, numCols int) (*Cube, error) {
	if startRow < 0 || startCol < 0 {
		return nil, fmt.Errorf("start coordinates must be non-negative")
	}
	if numRows <= 0 || numCols <= 0 {
		return nil, fmt.Errorf("region dimensions must be positive")
	}
	if startRow+numRows > c.Rows || startCol+numCols > c.Cols {
		return nil, fmt.Errorf("region extends beyond cube extent %dx%d", c.Rows, c.Cols)
	}

	region, err := New(numRows, numCols, c.Bands)
	if err != nil {
		return nil, err
	}
	for row := 0; row < numRows; row++ {
		srcStart := c.index(startRow+row, startCol, 0)
		dstStart := region.index(row, 0, 0)
		copy(region.Data[dstStart:dstStart+numCols*c.Bands], c.Data[srcStart:srcStart+numCols*c.Bands])
	}
	return region, nil
}

// Clone returns a deep copy of the cube with independent storage.
func (c *Cube) Clone() *Cube {
	data := make([]float64, len(c.Data))
	copy(data, c.Data)
	return &Cube{Data: data, Rows: c.Rows, Cols: c.Cols, Bands: c.Bands}
}

// Dims returns the cube dimensions as (rows, cols, bands).
func (c *Cube) Dims() (rows, cols, bands int) {
	return c.Rows, c.Cols, c.Bands
}
