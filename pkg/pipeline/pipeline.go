// Package pipeline orchestrates a complete cloud detection run: loading a
// radiance datacube, resolving the band/threshold selection, deriving the
// cloud mask, measuring cover, applying the mask, and persisting results.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"cloudmask/pkg/cube"
	"cloudmask/pkg/masking"
	"cloudmask/pkg/npz"
	"cloudmask/pkg/selection"
)

// Params holds the detection parameters for one pipeline run.
type Params struct {
	// CubePath is the path of the radiance datacube (.npy or .npz)
	CubePath string

	// WavelengthPath is an optional text file of band-centre wavelengths.
	// When empty, wavelengths are generated linearly between MinWavelength
	// and MaxWavelength.
	WavelengthPath string

	// MinWavelength and MaxWavelength bound linear wavelength generation,
	// in nm
	MinWavelength float64
	MaxWavelength float64

	// Band is the spectral band to threshold (0-indexed). A negative value
	// selects the band with the highest radiance variance.
	Band int

	// Threshold is the radiance cutoff, used when UseThreshold is set
	Threshold float64

	// UseThreshold controls whether Threshold is taken as-is; when false
	// the threshold is derived from ThresholdPercentile
	UseThreshold bool

	// ThresholdPercentile is the radiance percentile used to derive a
	// threshold when none is given explicitly
	ThresholdPercentile float64

	// NumCores specifies how many CPU cores to use for the spatial
	// masking loops
	NumCores int

	// SaveData determines whether mask and masked-cube archives are
	// written to OutputDir after detection
	SaveData bool

	// OutputDir is the directory where result archives are written
	OutputDir string

	// Verbose enables step-by-step progress output
	Verbose bool
}

// Result holds the outputs of one detection run.
type Result struct {
	// Band and Threshold are the resolved selection the mask was built from
	Band      int
	Threshold float64

	// CloudCover is the fraction of spatial pixels classified as cloud
	CloudCover float64

	// Mask is the derived binary cloud mask
	Mask *cube.Mask

	// MaskedCube is the input cube with cloud pixels zeroed across all bands
	MaskedCube *cube.Cube
}

// Detector runs the cloud detection pipeline over one datacube.
type Detector struct {
	// params stores the detection configuration
	params *Params

	// data holds the loaded radiance datacube
	data *cube.Cube

	// wavelengths holds the band-centre wavelengths of the cube
	wavelengths cube.Wavelengths

	// result stores the detection outputs after Process completes
	result Result
}

// NewDetector creates a new detector instance with the provided parameters.
func NewDetector(params *Params) *Detector {
	return &Detector{params: params}
}

// Process runs the complete detection pipeline
func (d *Detector) Process() error {
	// Step 1: Load the radiance datacube and its wavelength calibration
	d.logf("Step 1: Loading datacube from %s...\n", d.params.CubePath)
	if err := d.loadData(); err != nil {
		return fmt.Errorf("failed to load datacube: %w", err)
	}
	d.logf("Loaded datacube with dimensions %dx%dx%d\n", d.data.Rows, d.data.Cols, d.data.Bands)

	// Step 2: Resolve the band and threshold selection
	d.logf("Step 2: Resolving band and threshold selection...\n")
	sel, err := d.resolveSelection()
	if err != nil {
		return fmt.Errorf("failed to resolve selection: %w", err)
	}
	if w, err := d.wavelengths.ForBand(sel.Band); err == nil {
		d.logf("Selected band %d (%.1f nm) with threshold %g\n", sel.Band+1, w, sel.Threshold)
	} else {
		d.logf("Selected band %d with threshold %g\n", sel.Band+1, sel.Threshold)
	}

	// Step 3: Create the cloud mask and measure cover
	d.logf("Step 3: Creating cloud mask...\n")
	engine := masking.NewEngine(d.params.NumCores)
	mask, err := engine.CreateMask(d.data, sel.Band, sel.Threshold)
	if err != nil {
		return fmt.Errorf("failed to create cloud mask: %w", err)
	}
	ratio, err := engine.MeasureCover(mask)
	if err != nil {
		return fmt.Errorf("failed to measure cloud cover: %w", err)
	}
	d.logf("Total cloud cover: %.2f%%\n", ratio*100)

	// Step 4: Apply the mask to the datacube
	d.logf("Step 4: Applying cloud mask to datacube...\n")
	masked, err := engine.ApplyMask(d.data, mask)
	if err != nil {
		return fmt.Errorf("failed to apply cloud mask: %w", err)
	}

	d.result = Result{
		Band:       sel.Band,
		Threshold:  sel.Threshold,
		CloudCover: ratio,
		Mask:       mask,
		MaskedCube: masked,
	}

	// Step 5: Persist results if requested
	if d.params.SaveData {
		d.logf("Step 5: Saving results to %s...\n", d.params.OutputDir)
		if err := d.saveResults(); err != nil {
			return fmt.Errorf("failed to save results: %w", err)
		}
	}

	return nil
}

// loadData loads the datacube and its wavelength calibration.
func (d *Detector) loadData() error {
	data, err := npz.LoadCube(d.params.CubePath)
	if err != nil {
		return err
	}
	d.data = data

	if d.params.WavelengthPath != "" {
		w, err := npz.ReadWavelengths(d.params.WavelengthPath)
		if err != nil {
			return err
		}
		if len(w) != data.Bands {
			return fmt.Errorf("wavelength file holds %d values for a %d-band cube", len(w), data.Bands)
		}
		d.wavelengths = w
		return nil
	}

	min, max := d.params.MinWavelength, d.params.MaxWavelength
	if max <= min {
		// No usable range configured; leave wavelengths empty
		return nil
	}
	w, err := cube.LinearWavelengths(min, max, data.Bands)
	if err != nil {
		return err
	}
	d.wavelengths = w
	return nil
}

// resolveSelection turns the configured parameters into a validated
// band/threshold pair.
func (d *Detector) resolveSelection() (selection.Selection, error) {
	band := d.params.Band
	if band < 0 {
		chosen, err := selection.HighestVarianceBand(d.data)
		if err != nil {
			return selection.Selection{}, err
		}
		band = chosen
		d.logf("No band given, using highest-variance band %d\n", band+1)
	}

	if d.params.UseThreshold {
		return selection.Manual(d.data, band, d.params.Threshold)
	}

	threshold, err := selection.PercentileThreshold(d.data, band, d.params.ThresholdPercentile)
	if err != nil {
		return selection.Selection{}, err
	}
	d.logf("No threshold given, using %gth percentile radiance %g\n",
		d.params.ThresholdPercentile, threshold)
	return selection.Manual(d.data, band, threshold)
}

// saveResults writes the mask archive and masked datacube archive.
func (d *Detector) saveResults() error {
	if err := os.MkdirAll(d.params.OutputDir, 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	maskPath := filepath.Join(d.params.OutputDir, "cloud_mask.npz")
	if err := npz.SaveMaskArchive(maskPath, d.result.Mask, d.result.Band, d.result.Threshold); err != nil {
		return err
	}
	d.logf("Cloud mask saved to: %s\n", maskPath)

	maskedPath := filepath.Join(d.params.OutputDir, "masked_datacube.npz")
	if err := npz.SaveMaskedCube(maskedPath, d.result.MaskedCube); err != nil {
		return err
	}
	d.logf("Masked datacube saved to: %s\n", maskedPath)

	return nil
}

// Result returns the detection outputs. Valid after Process has completed.
func (d *Detector) Result() Result {
	return d.result
}

// CubeData returns the loaded datacube. Valid after Process has completed.
func (d *Detector) CubeData() *cube.Cube {
	return d.data
}

// Wavelengths returns the band-centre wavelengths of the loaded cube, or nil
// when no calibration was available.
func (d *Detector) Wavelengths() cube.Wavelengths {
	return d.wavelengths
}

// logf prints progress output when verbose mode is enabled.
func (d *Detector) logf(format string, args ...interface{}) {
	if d.params.Verbose {
		fmt.Printf(format, args...)
	}
}
