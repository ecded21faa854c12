package cube

import (
	"fmt"
)

// Wavelengths holds the centre wavelength of each spectral band, in
// nanometres, in band order.
type Wavelengths []float64

// LinearWavelengths generates band-centre wavelengths linearly distributed
// between min and max inclusive, one per band. This mirrors the fallback used
// when a sensor ships no wavelength calibration file.
func LinearWavelengths(min, max float64, bands int) (Wavelengths, error) {
	if bands <= 0 {
		return nil, fmt.Errorf("band count must be positive, got %d", bands)
	}
	if max <= min {
		return nil, fmt.Errorf("max wavelength %g must exceed min %g", max, min)
	}

	w := make(Wavelengths, bands)
	if bands == 1 {
		w[0] = min
		return w, nil
	}
	step := (max - min) / float64(bands-1)
	for i := range w {
		w[i] = min + float64(i)*step
	}
	// Pin the last centre to max exactly, avoiding accumulated rounding
	w[bands-1] = max
	return w, nil
}

// Increment returns the spacing between consecutive band centres in nm.
func (w Wavelengths) Increment() (float64, error) {
	if len(w) < 2 {
		return 0, fmt.Errorf("need at least 2 wavelengths to compute an increment, have %d", len(w))
	}
	return w[1] - w[0], nil
}

// ForBand returns the centre wavelength of the given band.
func (w Wavelengths) ForBand(band int) (float64, error) {
	if band < 0 || band >= len(w) {
		return 0, fmt.Errorf("band %d exceeds wavelength count %d", band, len(w))
	}
	return w[band], nil
}
