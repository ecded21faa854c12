// Package selection resolves the (band, threshold) pair the masking engine
// needs, without any interactive display. It validates manual choices and can
// suggest values from the radiance statistics of the cube itself.
package selection

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"cloudmask/pkg/cube"
)

// Selection is a validated band/threshold pair ready to hand to the masking
// engine.
type Selection struct {
	// Band is the spectral band index used for thresholding (0-indexed)
	Band int

	// Threshold is the radiance cutoff; values strictly above it classify
	// as cloud
	Threshold float64
}

// BandStats summarizes the radiance distribution of one spectral band.
type BandStats struct {
	Band     int
	Min      float64
	Max      float64
	Mean     float64
	StdDev   float64
	Variance float64
}

// Manual validates an explicitly chosen band and threshold against the cube.
//
// The threshold itself has no inherent bounds; only the band index is
// checked.
func Manual(c *cube.Cube, band int, threshold float64) (Selection, error) {
	if !c.ValidBand(band) {
		return Selection{}, fmt.Errorf("band %d out of range [0, %d)", band, c.Bands)
	}
	return Selection{Band: band, Threshold: threshold}, nil
}

// PercentileThreshold suggests a threshold at the given percentile of the
// radiance distribution in the chosen band. A percentile of 95 places the
// cutoff so that roughly the brightest 5% of pixels classify as cloud.
func PercentileThreshold(c *cube.Cube, band int, percentile float64) (float64, error) {
	if percentile < 0 || percentile > 100 {
		return 0, fmt.Errorf("percentile must be in [0, 100], got %g", percentile)
	}

	values, err := c.Band(band)
	if err != nil {
		return 0, err
	}

	sort.Float64s(values)
	return stat.Quantile(percentile/100, stat.Empirical, values, nil), nil
}

// Stats computes summary statistics for one spectral band.
func Stats(c *cube.Cube, band int) (BandStats, error) {
	values, err := c.Band(band)
	if err != nil {
		return BandStats{}, err
	}

	variance := stat.Variance(values, nil)
	return BandStats{
		Band:     band,
		Min:      floats.Min(values),
		Max:      floats.Max(values),
		Mean:     stat.Mean(values, nil),
		StdDev:   stat.StdDev(values, nil),
		Variance: variance,
	}, nil
}

// HighestVarianceBand returns the band whose radiance values spread the
// widest. Clouds are bright against most backgrounds, so the band with the
// largest variance is a reasonable headless stand-in for browsing bands by
// eye.
func HighestVarianceBand(c *cube.Cube) (int, error) {
	best := 0
	bestVariance := -1.0

	for band := 0; band < c.Bands; band++ {
		values, err := c.Band(band)
		if err != nil {
			return 0, err
		}
		v := stat.Variance(values, nil)
		if v > bestVariance {
			best = band
			bestVariance = v
		}
	}
	return best, nil
}
