package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/exp/constraints"

	"ndlabel/internal/models"
	"ndlabel/pkg/config"
	"ndlabel/pkg/kernel"
	"ndlabel/pkg/labeling"
	"ndlabel/pkg/measurements"
	"ndlabel/pkg/stack"
	"ndlabel/pkg/visualization"
)

func main() {
	// Parse command line arguments
	inputDir := flag.String("input", "", "Directory containing the 2D slices of the binary volume")
	configPath := flag.String("config", "ndlabel.yaml", "YAML configuration file")
	structure := flag.String("structure", "", "Structuring element: star, ball or full (overrides config)")
	labelBits := flag.Int("bits", 0, "Label integer width: 8, 16, 32 or 64 (overrides config)")
	threshold := flag.Float64("threshold", -1, "Foreground grey level in [0,1] (overrides config)")
	largestDir := flag.String("largest", "", "Directory to save the largest component slices")
	slicesDir := flag.String("slices", "", "Directory to save colour-coded label slices")
	verbose := flag.Bool("v", false, "Report per-plane progress")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	if *inputDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *structure != "" {
		cfg.Labeling.Structure = *structure
	}
	if *labelBits != 0 {
		cfg.Labeling.LabelBits = *labelBits
	}
	if *threshold >= 0 {
		cfg.Input.Threshold = *threshold
	}
	if *largestDir != "" {
		cfg.Output.LargestDir = *largestDir
	}
	if *slicesDir != "" {
		cfg.Output.SlicesDir = *slicesDir
	}
	cfg.Output.Verbose = cfg.Output.Verbose || *verbose
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	mask, err := stack.LoadMask(*inputDir, cfg.Input.Threshold)
	if err != nil {
		log.Fatalf("Failed to load volume: %v", err)
	}
	fmt.Printf("Loaded %dx%dx%d volume with %d foreground voxels\n",
		mask.Width, mask.Height, mask.Depth, mask.Count())

	shape, _ := kernel.ParseShape(cfg.Labeling.Structure)
	se := kernel.Generate(shape)

	switch cfg.Labeling.LabelBits {
	case 8:
		err = run[uint8](mask, se, cfg)
	case 16:
		err = run[uint16](mask, se, cfg)
	case 32:
		err = run[uint32](mask, se, cfg)
	default:
		err = run[uint64](mask, se, cfg)
	}
	if err != nil {
		log.Fatalf("Labeling failed: %v", err)
	}
}

func run[L constraints.Unsigned](mask, se *models.Mask, cfg *config.Config) error {
	opts := labeling.Options{}
	if cfg.Output.Verbose {
		opts.Progress = func(completed, total int) {
			fmt.Printf("  plane %d/%d\n", completed, total)
		}
	}

	fmt.Printf("Labeling with %s structuring element and %d-bit labels...\n",
		cfg.Labeling.Structure, cfg.Labeling.LabelBits)
	start := time.Now()
	labels, features, err := labeling.LabelWithOptions[L](mask, se, opts)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d features in %.3f seconds\n", features, time.Since(start).Seconds())

	summary := measurements.Summarize(labels, features)
	if features > 0 {
		fmt.Printf("Component size: min %d, max %d, mean %.1f, stddev %.1f, median %.0f\n",
			summary.MinSize, summary.MaxSize, summary.MeanSize, summary.StdDevSize, summary.MedianSize)
	}

	best, count, ok := measurements.MostFrequentLabel(labels, features)
	if !ok {
		fmt.Println("Volume has no foreground voxels")
		return nil
	}
	fmt.Printf("Largest component: label %d with %d voxels\n", best, count)

	if cfg.Output.LargestDir != "" {
		if err := stack.SaveMask(labels.Select(best), cfg.Output.LargestDir); err != nil {
			return fmt.Errorf("failed to save largest component: %w", err)
		}
		fmt.Printf("Largest component saved to: %s\n", cfg.Output.LargestDir)
	}

	if cfg.Output.SlicesDir != "" {
		viewer := visualization.NewViewer(labels)
		for _, axis := range []string{"x", "y", "z"} {
			axisDir := filepath.Join(cfg.Output.SlicesDir, axis)
			if err := viewer.SaveSliceSequence(axis, axisDir); err != nil {
				log.Printf("Warning: Failed to save %s-axis slices: %v", axis, err)
			}
		}
		fmt.Printf("Label slices saved to: %s\n", cfg.Output.SlicesDir)
	}

	return nil
}
