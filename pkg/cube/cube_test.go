package cube

import (
	"math"
	"testing"
)

// TestNewValidation verifies dimension validation on cube creation
func TestNewValidation(t *testing.T) {
	cases := []struct {
		rows, cols, bands int
		valid             bool
	}{
		{1, 1, 1, true},
		{956, 684, 120, true},
		{0, 4, 4, false},
		{4, 0, 4, false},
		{4, 4, 0, false},
		{-1, 4, 4, false},
	}

	for _, tc := range cases {
		_, err := New(tc.rows, tc.cols, tc.bands)
		if tc.valid && err != nil {
			t.Errorf("New(%d,%d,%d): unexpected error: %v", tc.rows, tc.cols, tc.bands, err)
		}
		if !tc.valid && err == nil {
			t.Errorf("New(%d,%d,%d): expected error", tc.rows, tc.cols, tc.bands)
		}
	}
}

// TestFromDataLengthCheck verifies the data length must match the dimensions
func TestFromDataLengthCheck(t *testing.T) {
	if _, err := FromData(make([]float64, 24), 2, 3, 4); err != nil {
		t.Errorf("FromData with matching length failed: %v", err)
	}
	if _, err := FromData(make([]float64, 23), 2, 3, 4); err == nil {
		t.Error("FromData with short data should fail")
	}
	if _, err := FromData(make([]float64, 25), 2, 3, 4); err == nil {
		t.Error("FromData with long data should fail")
	}
}

// TestIndexing verifies row-major (row, col, band) index math round-trips
func TestIndexing(t *testing.T) {
	c, err := New(3, 4, 5)
	if err != nil {
		t.Fatalf("Failed to create cube: %v", err)
	}

	value := 0.0
	for row := 0; row < 3; row++ {
		for col := 0; col < 4; col++ {
			for band := 0; band < 5; band++ {
				c.Set(row, col, band, value)
				value++
			}
		}
	}

	// Spectral values of one pixel must be contiguous
	for i, v := range c.Data {
		if v != float64(i) {
			t.Fatalf("Data index %d holds %g, expected %d", i, v, i)
		}
	}

	if got := c.At(1, 2, 3); got != float64((1*4+2)*5+3) {
		t.Errorf("At(1,2,3): got %g, expected %d", got, (1*4+2)*5+3)
	}
}

// TestBandExtraction verifies extracting one spectral band as a 2D slice
func TestBandExtraction(t *testing.T) {
	c, err := New(2, 3, 4)
	if err != nil {
		t.Fatalf("Failed to create cube: %v", err)
	}
	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			for band := 0; band < 4; band++ {
				c.Set(row, col, band, float64(row*100+col*10+band))
			}
		}
	}

	slice, err := c.Band(2)
	if err != nil {
		t.Fatalf("Band(2) failed: %v", err)
	}
	if len(slice) != 6 {
		t.Fatalf("Band slice length: got %d, expected 6", len(slice))
	}
	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			expected := float64(row*100 + col*10 + 2)
			if slice[row*3+col] != expected {
				t.Errorf("Band slice at (%d,%d): got %g, expected %g",
					row, col, slice[row*3+col], expected)
			}
		}
	}

	// The extracted slice must not alias the cube
	slice[0] = -1
	if c.At(0, 0, 2) == -1 {
		t.Error("Band slice aliases cube storage")
	}

	if _, err := c.Band(4); err == nil {
		t.Error("Band(4) on a 4-band cube should fail")
	}
	if _, err := c.Band(-1); err == nil {
		t.Error("Band(-1) should fail")
	}
}

// TestSpectrumExtraction verifies extracting one pixel's spectral signature
func TestSpectrumExtraction(t *testing.T) {
	c, err := New(2, 2, 3)
	if err != nil {
		t.Fatalf("Failed to create cube: %v", err)
	}
	for band := 0; band < 3; band++ {
		c.Set(1, 0, band, float64(band)*1.5)
	}

	spectrum, err := c.Spectrum(1, 0)
	if err != nil {
		t.Fatalf("Spectrum failed: %v", err)
	}
	for band, v := range spectrum {
		if v != float64(band)*1.5 {
			t.Errorf("Spectrum band %d: got %g, expected %g", band, v, float64(band)*1.5)
		}
	}

	if _, err := c.Spectrum(2, 0); err == nil {
		t.Error("Spectrum outside spatial extent should fail")
	}
}

// TestRegionExtraction verifies 3D subregion extraction
func TestRegionExtraction(t *testing.T) {
	c, err := New(4, 4, 2)
	if err != nil {
		t.Fatalf("Failed to create cube: %v", err)
	}
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			for band := 0; band < 2; band++ {
				c.Set(row, col, band, float64(row*8+col*2+band))
			}
		}
	}

	region, err := c.Region(1, 1, 2, 3)
	if err != nil {
		t.Fatalf("Region failed: %v", err)
	}
	if region.Rows != 2 || region.Cols != 3 || region.Bands != 2 {
		t.Fatalf("Region dimensions: got %dx%dx%d, expected 2x3x2",
			region.Rows, region.Cols, region.Bands)
	}
	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			for band := 0; band < 2; band++ {
				expected := c.At(1+row, 1+col, band)
				if region.At(row, col, band) != expected {
					t.Errorf("Region at (%d,%d,%d): got %g, expected %g",
						row, col, band, region.At(row, col, band), expected)
				}
			}
		}
	}

	if _, err := c.Region(3, 3, 2, 2); err == nil {
		t.Error("Region extending beyond the cube should fail")
	}
	if _, err := c.Region(-1, 0, 2, 2); err == nil {
		t.Error("Region with negative start should fail")
	}
}

// TestCloneIndependence verifies clones have independent storage
func TestCloneIndependence(t *testing.T) {
	c, err := New(2, 2, 2)
	if err != nil {
		t.Fatalf("Failed to create cube: %v", err)
	}
	c.Set(0, 0, 0, 42)

	clone := c.Clone()
	clone.Set(0, 0, 0, -1)

	if c.At(0, 0, 0) != 42 {
		t.Error("Mutating a clone changed the original cube")
	}
}

// TestMaskFromDataValidation verifies mask construction checks
func TestMaskFromDataValidation(t *testing.T) {
	if _, err := MaskFromData([]uint8{0, 1, 1, 0}, 2, 2); err != nil {
		t.Errorf("Valid mask data rejected: %v", err)
	}
	if _, err := MaskFromData([]uint8{0, 1, 2, 0}, 2, 2); err == nil {
		t.Error("Mask value 2 should be rejected")
	}
	if _, err := MaskFromData([]uint8{0, 1}, 2, 2); err == nil {
		t.Error("Short mask data should be rejected")
	}
}

// TestMaskCloudCount verifies cloud pixel counting
func TestMaskCloudCount(t *testing.T) {
	m, err := MaskFromData([]uint8{1, 0, 1, 1, 0, 0}, 2, 3)
	if err != nil {
		t.Fatalf("MaskFromData failed: %v", err)
	}
	if got := m.CloudCount(); got != 3 {
		t.Errorf("CloudCount: got %d, expected 3", got)
	}
}

// TestLinearWavelengths verifies linear wavelength generation
func TestLinearWavelengths(t *testing.T) {
	w, err := LinearWavelengths(400, 800, 120)
	if err != nil {
		t.Fatalf("LinearWavelengths failed: %v", err)
	}

	if len(w) != 120 {
		t.Fatalf("Wavelength count: got %d, expected 120", len(w))
	}
	if w[0] != 400 {
		t.Errorf("First wavelength: got %g, expected 400", w[0])
	}
	if w[119] != 800 {
		t.Errorf("Last wavelength: got %g, expected 800", w[119])
	}

	inc, err := w.Increment()
	if err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	expected := 400.0 / 119.0
	if math.Abs(inc-expected) > 1e-9 {
		t.Errorf("Increment: got %g, expected %g", inc, expected)
	}

	// Centres must be strictly increasing
	for i := 1; i < len(w); i++ {
		if w[i] <= w[i-1] {
			t.Fatalf("Wavelengths not strictly increasing at index %d: %g <= %g",
				i, w[i], w[i-1])
		}
	}
}

// TestLinearWavelengthsValidation verifies rejection of degenerate ranges
func TestLinearWavelengthsValidation(t *testing.T) {
	if _, err := LinearWavelengths(400, 800, 0); err == nil {
		t.Error("Zero bands should be rejected")
	}
	if _, err := LinearWavelengths(800, 400, 10); err == nil {
		t.Error("Inverted wavelength range should be rejected")
	}
	if _, err := LinearWavelengths(400, 400, 10); err == nil {
		t.Error("Empty wavelength range should be rejected")
	}
}

// TestWavelengthsForBand verifies band lookup bounds
func TestWavelengthsForBand(t *testing.T) {
	w, err := LinearWavelengths(400, 800, 5)
	if err != nil {
		t.Fatalf("LinearWavelengths failed: %v", err)
	}

	v, err := w.ForBand(4)
	if err != nil {
		t.Fatalf("ForBand(4) failed: %v", err)
	}
	if v != 800 {
		t.Errorf("ForBand(4): got %g, expected 800", v)
	}

	if _, err := w.ForBand(5); err == nil {
		t.Error("ForBand(5) on 5 wavelengths should fail")
	}
}
