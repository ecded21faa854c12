// Package npz loads and stores datacubes, cloud masks, and wavelength
// calibration data in the NumPy formats the acquisition tooling produces:
// .npy single arrays, .npz zip archives of .npy entries, and plain text
// wavelength listings.
//
// The masking engine itself is format-agnostic; this package is the
// persistence collaborator around it. Mask archives round-trip the mask,
// band index, and threshold losslessly so that downstream comparison tools
// can read back exactly what was detected.
package npz

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"cloudmask/pkg/cube"
)

// Archive entry names follow numpy's savez convention of "<key>.npy".
const (
	maskEntry       = "mask.npy"
	bandEntry       = "band_index.npy"
	thresholdEntry  = "threshold.npy"
	maskedCubeEntry = "masked_datacube.npy"
	shapeEntry      = "shape.npy"
)

// LoadCube reads a radiance datacube from a .npy file holding a 3D array,
// or from a .npz archive written by SaveCubeArchive.
func LoadCube(path string) (*cube.Cube, error) {
	if strings.HasSuffix(strings.ToLower(path), ".npz") {
		return loadCubeArchive(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening datacube file: %w", err)
	}
	defer f.Close()

	c, err := readCubeNpy(f)
	if err != nil {
		return nil, fmt.Errorf("error reading datacube %s: %w", path, err)
	}
	return c, nil
}

// readCubeNpy decodes a 3D float array in npy format into a cube.
func readCubeNpy(r io.Reader) (*cube.Cube, error) {
	npy, err := npyio.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("error reading npy header: %w", err)
	}

	shape := npy.Header.Descr.Shape
	if len(shape) != 3 {
		return nil, fmt.Errorf("datacube must be 3-dimensional, got shape %v", shape)
	}
	if npy.Header.Descr.Fortran {
		return nil, fmt.Errorf("fortran-ordered arrays are not supported")
	}

	rows, cols, bands := shape[0], shape[1], shape[2]
	data := make([]float64, rows*cols*bands)
	if err := npy.Read(&data); err != nil {
		return nil, fmt.Errorf("error reading npy data: %w", err)
	}

	return cube.FromData(data, rows, cols, bands)
}

// loadCubeArchive reads a cube from a .npz archive. The archive must hold a
// flat data entry plus a shape entry, as written by SaveCubeArchive, or a
// single 3D array entry.
func loadCubeArchive(path string) (*cube.Cube, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("error opening npz archive: %w", err)
	}
	defer zr.Close()

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	// Archive written by this package: flat data plus an explicit shape
	if shapeFile, ok := entries[shapeEntry]; ok {
		var shape []int64
		if err := readEntry(shapeFile, &shape); err != nil {
			return nil, fmt.Errorf("error reading shape entry: %w", err)
		}
		if len(shape) != 3 {
			return nil, fmt.Errorf("shape entry must have 3 dimensions, got %v", shape)
		}

		for name, f := range entries {
			if name == shapeEntry {
				continue
			}
			var data []float64
			if err := readEntry(f, &data); err != nil {
				return nil, fmt.Errorf("error reading data entry %s: %w", name, err)
			}
			return cube.FromData(data, int(shape[0]), int(shape[1]), int(shape[2]))
		}
		return nil, fmt.Errorf("npz archive %s holds a shape entry but no data entry", path)
	}

	// Foreign archive: take the first 3D entry
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("error opening npz entry %s: %w", f.Name, err)
		}
		c, err := readCubeNpy(rc)
		rc.Close()
		if err == nil {
			return c, nil
		}
	}
	return nil, fmt.Errorf("npz archive %s holds no 3-dimensional entry", path)
}

// SaveCubeArchive writes a cube to a compressed .npz archive with the given
// data entry key. The cube data is stored flat alongside an explicit shape
// entry.
func SaveCubeArchive(path, key string, c *cube.Cube) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating npz archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	if err := writeEntry(zw, key+".npy", c.Data); err != nil {
		return err
	}
	shape := []int64{int64(c.Rows), int64(c.Cols), int64(c.Bands)}
	if err := writeEntry(zw, shapeEntry, shape); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("error finalizing npz archive: %w", err)
	}
	return nil
}

// SaveMaskedCube writes a masked datacube archive with the entry key the
// comparison tooling expects.
func SaveMaskedCube(path string, c *cube.Cube) error {
	return SaveCubeArchive(path, strings.TrimSuffix(maskedCubeEntry, ".npy"), c)
}

// SaveMaskArchive writes a cloud mask together with the band index and
// threshold that produced it to a compressed .npz archive. LoadMaskArchive
// returns all three unchanged.
func SaveMaskArchive(path string, m *cube.Mask, band int, threshold float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating mask archive: %w", err)
	}
	defer f.Close()

	// The mask goes through a 2D matrix so the npy header carries its
	// spatial shape
	maskData := make([]float64, len(m.Data))
	for i, v := range m.Data {
		maskData[i] = float64(v)
	}
	maskMat := mat.NewDense(m.Rows, m.Cols, maskData)

	zw := zip.NewWriter(f)
	if err := writeEntry(zw, maskEntry, maskMat); err != nil {
		return err
	}
	if err := writeEntry(zw, bandEntry, []int64{int64(band)}); err != nil {
		return err
	}
	if err := writeEntry(zw, thresholdEntry, []float64{threshold}); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("error finalizing mask archive: %w", err)
	}
	return nil
}

// LoadMaskArchive reads back a mask archive written by SaveMaskArchive,
// returning the mask, the band index, and the threshold exactly as saved.
func LoadMaskArchive(path string) (*cube.Mask, int, float64, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("error opening mask archive: %w", err)
	}
	defer zr.Close()

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	maskFile, ok := entries[maskEntry]
	if !ok {
		return nil, 0, 0, fmt.Errorf("mask archive %s has no %s entry", path, maskEntry)
	}

	rc, err := maskFile.Open()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("error opening mask entry: %w", err)
	}
	npy, err := npyio.NewReader(rc)
	if err != nil {
		rc.Close()
		return nil, 0, 0, fmt.Errorf("error reading mask entry header: %w", err)
	}
	shape := npy.Header.Descr.Shape
	if len(shape) != 2 {
		rc.Close()
		return nil, 0, 0, fmt.Errorf("mask entry must be 2-dimensional, got shape %v", shape)
	}
	maskData := make([]float64, shape[0]*shape[1])
	if err := npy.Read(&maskData); err != nil {
		rc.Close()
		return nil, 0, 0, fmt.Errorf("error reading mask entry data: %w", err)
	}
	rc.Close()

	data := make([]uint8, len(maskData))
	for i, v := range maskData {
		switch v {
		case 0:
			data[i] = 0
		case 1:
			data[i] = 1
		default:
			return nil, 0, 0, fmt.Errorf("mask entry value at index %d is %g, must be 0 or 1", i, v)
		}
	}
	m, err := cube.MaskFromData(data, shape[0], shape[1])
	if err != nil {
		return nil, 0, 0, err
	}

	bandFile, ok := entries[bandEntry]
	if !ok {
		return nil, 0, 0, fmt.Errorf("mask archive %s has no %s entry", path, bandEntry)
	}
	var bands []int64
	if err := readEntry(bandFile, &bands); err != nil {
		return nil, 0, 0, fmt.Errorf("error reading band entry: %w", err)
	}
	if len(bands) != 1 {
		return nil, 0, 0, fmt.Errorf("band entry must hold exactly one value, got %d", len(bands))
	}

	thresholdFile, ok := entries[thresholdEntry]
	if !ok {
		return nil, 0, 0, fmt.Errorf("mask archive %s has no %s entry", path, thresholdEntry)
	}
	var thresholds []float64
	if err := readEntry(thresholdFile, &thresholds); err != nil {
		return nil, 0, 0, fmt.Errorf("error reading threshold entry: %w", err)
	}
	if len(thresholds) != 1 {
		return nil, 0, 0, fmt.Errorf("threshold entry must hold exactly one value, got %d", len(thresholds))
	}

	return m, int(bands[0]), thresholds[0], nil
}

// ReadWavelengths parses a plain text wavelength calibration file: one or
// more whitespace-separated band-centre values in nanometres, in band order.
func ReadWavelengths(path string) (cube.Wavelengths, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening wavelength file: %w", err)
	}
	defer f.Close()

	var w cube.Wavelengths
	scanner := bufio.NewScanner(f)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		v, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("error parsing wavelength %q: %w", scanner.Text(), err)
		}
		w = append(w, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading wavelength file: %w", err)
	}
	if len(w) == 0 {
		return nil, fmt.Errorf("wavelength file %s holds no values", path)
	}
	return w, nil
}

// writeEntry adds one deflate-compressed npy entry to a zip archive.
func writeEntry(zw *zip.Writer, name string, v interface{}) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("error creating archive entry %s: %w", name, err)
	}
	if err := npyio.Write(w, v); err != nil {
		return fmt.Errorf("error encoding archive entry %s: %w", name, err)
	}
	return nil
}

// readEntry decodes one npy entry from a zip archive into ptr.
func readEntry(f *zip.File, ptr interface{}) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return npyio.Read(rc, ptr)
}
