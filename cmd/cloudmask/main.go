package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"cloudmask/pkg/config"
	"cloudmask/pkg/pipeline"
)

func main() {
	// Parse command line arguments
	cubePath := flag.String("cube", "", "Path to the radiance datacube (.npy or .npz)")
	wavelengthPath := flag.String("wavelengths", "", "Optional text file of band-centre wavelengths")
	band := flag.Int("band", -1, "Spectral band to threshold, 1-indexed (default: highest-variance band)")
	threshold := flag.Float64("threshold", 0, "Radiance threshold; pixels strictly above it classify as cloud")
	percentile := flag.Float64("percentile", 0, "Radiance percentile used to derive a threshold when none is given")
	configPath := flag.String("config", "", "Path to a YAML configuration file")
	outputDir := flag.String("output", "", "Directory for result archives")
	saveData := flag.Bool("save-data", false, "Save the cloud mask and masked datacube archives")
	numCores := flag.Int("cores", runtime.NumCPU(), "Number of CPU cores to use (default: all available)")
	quiet := flag.Bool("quiet", false, "Suppress step-by-step progress output")
	flag.Parse()

	// Load configuration, then apply flag overrides
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *cubePath == "" {
		if cfg.Data.Datacube == "" {
			flag.Usage()
			os.Exit(1)
		}
		*cubePath = cfg.CubePath()
	}
	if *wavelengthPath == "" && cfg.Data.WavelengthFile != "" {
		*wavelengthPath = filepath.Join(cfg.Data.DataFolder, cfg.Data.WavelengthFile)
	}
	if *outputDir == "" {
		*outputDir = cfg.Output.OutputFolder
	}
	if !flagWasSet("percentile") {
		*percentile = cfg.Selection.ThresholdPercentile
	}

	// Bands are 1-indexed on the command line, matching how band numbers
	// are reported; config values are 0-indexed
	selectedBand := cfg.Selection.Band
	if *band > 0 {
		selectedBand = *band - 1
	}

	useThreshold := cfg.Selection.UseThreshold
	selectedThreshold := cfg.Selection.Threshold
	if flagWasSet("threshold") {
		useThreshold = true
		selectedThreshold = *threshold
	}

	fmt.Println("================================")
	fmt.Println("HYPERSPECTRAL CLOUD DETECTION BY SINGLE-BAND THRESHOLDING")
	fmt.Println("================================")

	params := &pipeline.Params{
		CubePath:            *cubePath,
		WavelengthPath:      *wavelengthPath,
		MinWavelength:       cfg.Data.MinWavelength,
		MaxWavelength:       cfg.Data.MaxWavelength,
		Band:                selectedBand,
		Threshold:           selectedThreshold,
		UseThreshold:        useThreshold,
		ThresholdPercentile: *percentile,
		NumCores:            *numCores,
		SaveData:            *saveData || cfg.Output.SaveData,
		OutputDir:           *outputDir,
		Verbose:             !*quiet && cfg.Output.Verbose,
	}

	detector := pipeline.NewDetector(params)

	fmt.Println("Starting cloud detection...")
	startTime := time.Now()
	if err := detector.Process(); err != nil {
		log.Fatalf("Cloud detection failed: %v", err)
	}
	processingTime := time.Since(startTime)

	result := detector.Result()
	rows, cols, bands := detector.CubeData().Dims()

	fmt.Printf("\nCloud detection completed in %.2f seconds\n\n", processingTime.Seconds())
	fmt.Printf("Detection summary:\n")
	fmt.Printf("==================\n")
	fmt.Printf("Datacube dimensions: %dx%dx%d\n", rows, cols, bands)
	fmt.Printf("Selected band: %d", result.Band+1)
	if w, err := detector.Wavelengths().ForBand(result.Band); err == nil {
		fmt.Printf(" (%.1f nm)", w)
	}
	fmt.Println()
	fmt.Printf("Threshold: %g\n", result.Threshold)
	fmt.Printf("Cloud pixels: %d of %d\n", result.Mask.CloudCount(), rows*cols)
	fmt.Printf("Total cloud cover: %.2f%%\n", result.CloudCover*100)

	if params.SaveData {
		fmt.Println("\nResults saved to:")
		fmt.Printf("%s\n", params.OutputDir)
	}
}

// flagWasSet reports whether the named flag was given explicitly, so a
// legitimate zero value is distinguishable from the flag default.
func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
