// Package masking implements cloud detection for hyperspectral radiance
// datacubes by single-band thresholding.
//
// The engine provides three pure operations: deriving a binary cloud mask
// from one spectral band and a radiance threshold, measuring the cloud-cover
// ratio of a mask, and applying a mask back onto a cube by zeroing cloud
// pixels across all bands. All three validate their inputs before allocating
// any output and never mutate their arguments.
package masking

import (
	"sync"

	"cloudmask/pkg/cube"
)

// Engine runs the masking operations. A worker count above 1 splits the
// spatial loops of CreateMask and ApplyMask across row ranges; the results
// are identical to the sequential ones since every pixel's classification is
// independent of every other pixel's.
type Engine struct {
	// numWorkers is the number of goroutines used for the spatial loops.
	// Values below 1 are treated as 1.
	numWorkers int
}

// NewEngine creates a masking engine using the given number of workers for
// its spatial loops.
func NewEngine(numWorkers int) *Engine {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Engine{numWorkers: numWorkers}
}

// defaultEngine backs the package-level convenience functions.
var defaultEngine = NewEngine(1)

// CreateMask derives a binary cloud mask from one spectral band of the cube.
//
// A pixel is classified as cloud (mask value 1) when its radiance in the
// selected band is strictly greater than the threshold, and clear (mask
// value 0) otherwise. The comparison is strict: a pixel exactly equal to the
// threshold is clear. That boundary policy matches the sensor calibration
// outputs this tool has always produced and must not change.
//
// The returned mask is freshly allocated with the cube's spatial shape. The
// cube is not modified. Fails with *OutOfRangeError if band is outside
// [0, cube.Bands).
func (e *Engine) CreateMask(c *cube.Cube, band int, threshold float64) (*cube.Mask, error) {
	if !c.ValidBand(band) {
		return nil, &OutOfRangeError{Band: band, Bands: c.Bands}
	}

	mask, err := cube.NewMask(c.Rows, c.Cols)
	if err != nil {
		return nil, err
	}

	e.forEachRowRange(c.Rows, func(startRow, endRow int) {
		for row := startRow; row < endRow; row++ {
			for col := 0; col < c.Cols; col++ {
				if c.At(row, col, band) > threshold {
					mask.Set(row, col, 1)
				}
			}
		}
	})

	return mask, nil
}

// MeasureCover computes the cloud-cover ratio of a mask: the number of cloud
// pixels divided by the total pixel count. An all-clear mask yields exactly
// 0.0 and an all-cloud mask exactly 1.0.
//
// Behaviour is defined only for masks whose entries are in {0, 1}; the
// function does not re-validate that. Fails with *EmptyInputError if the
// mask has no elements.
func (e *Engine) MeasureCover(m *cube.Mask) (float64, error) {
	if len(m.Data) == 0 {
		return 0, &EmptyInputError{What: "cloud mask"}
	}
	return float64(m.CloudCount()) / float64(len(m.Data)), nil
}

// ApplyMask produces a copy of the cube with every cloud pixel zeroed across
// all spectral bands. Pixels the mask marks clear are bit-identical to the
// source. The result has independent storage: mutating it never affects the
// input cube, which is left untouched.
//
// The mask may come from CreateMask or from anywhere else, as long as its
// spatial shape equals the cube's; otherwise ApplyMask fails with
// *ShapeMismatchError before allocating the copy.
func (e *Engine) ApplyMask(c *cube.Cube, m *cube.Mask) (*cube.Cube, error) {
	if !m.MatchesCube(c) {
		return nil, &ShapeMismatchError{
			MaskRows: m.Rows, MaskCols: m.Cols,
			CubeRows: c.Rows, CubeCols: c.Cols,
		}
	}

	masked := c.Clone()

	e.forEachRowRange(c.Rows, func(startRow, endRow int) {
		for row := startRow; row < endRow; row++ {
			for col := 0; col < c.Cols; col++ {
				if m.At(row, col) == 1 {
					for band := 0; band < c.Bands; band++ {
						masked.Set(row, col, band, 0)
					}
				}
			}
		}
	})

	return masked, nil
}

// forEachRowRange runs fn over [0, rows) split into contiguous row ranges,
// one per worker. With a single worker it runs inline.
func (e *Engine) forEachRowRange(rows int, fn func(startRow, endRow int)) {
	if e.numWorkers == 1 || rows < e.numWorkers {
		fn(0, rows)
		return
	}

	var wg sync.WaitGroup
	rowsPerWorker := (rows + e.numWorkers - 1) / e.numWorkers

	for w := 0; w < e.numWorkers; w++ {
		startRow := w * rowsPerWorker
		endRow := startRow + rowsPerWorker
		if endRow > rows {
			endRow = rows
		}
		if startRow >= endRow {
			break
		}

		wg.Add(1)
		go func(startRow, endRow int) {
			defer wg.Done()
			fn(startRow, endRow)
		}(startRow, endRow)
	}

	wg.Wait()
}

// CreateMask derives a cloud mask using a sequential engine. See
// Engine.CreateMask.
func CreateMask(c *cube.Cube, band int, threshold float64) (*cube.Mask, error) {
	return defaultEngine.CreateMask(c, band, threshold)
}

// MeasureCover computes a mask's cloud-cover ratio. See Engine.MeasureCover.
func MeasureCover(m *cube.Mask) (float64, error) {
	return defaultEngine.MeasureCover(m)
}

// ApplyMask zeroes cloud pixels of a cube using a sequential engine. See
// Engine.ApplyMask.
func ApplyMask(c *cube.Cube, m *cube.Mask) (*cube.Cube, error) {
	return defaultEngine.ApplyMask(c, m)
}
