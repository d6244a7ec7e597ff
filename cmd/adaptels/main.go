package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"adaptels/pkg/config"
	"adaptels/pkg/logging"
	"adaptels/pkg/pipeline"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "adaptels.yaml", "YAML configuration file (defaults are used if it does not exist)")
	writeConfig := flag.Bool("write-config", false, "Write the effective configuration to -config and exit")
	inputFile := flag.String("input", "", "Image to segment")
	threshold := flag.Float64("threshold", 0, "Information threshold per adaptel (overrides config)")
	colorMode := flag.String("color", "", "Color mode: gray, lab, gray8 or rgb8 (overrides config)")
	labelImage := flag.String("out-labels", "", "Output file for the colored label map (overrides config)")
	borderImage := flag.String("out-borders", "", "Output file for the border overlay (overrides config)")
	labelData := flag.String("out-data", "", "Output file for the raw label map (overrides config)")
	randomSeed := flag.Uint64("seed", 0, "Seed of the frontier shuffle (overrides config)")
	connectivity := flag.Int("connectivity", 0, "Frontier connectivity, 4 or 8 (overrides config)")
	dilator := flag.String("dilator", "", "Frontier dilator: morph or opencv (overrides config)")
	timeout := flag.Duration("timeout", 0, "Stop growing adaptels after this long (0 = no limit)")
	saveIntermediary := flag.Bool("save-intermediary", false, "Save intermediary results during processing")
	regionMasks := flag.Bool("region-masks", false, "Save one mask per region with the intermediary results")
	verbose := flag.Bool("verbose", false, "Log every grown adaptel")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags given explicitly win over the configuration file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "threshold":
			cfg.Segmentation.Threshold = *threshold
		case "color":
			cfg.Input.ColorMode = *colorMode
		case "out-labels":
			cfg.Output.LabelImage = *labelImage
		case "out-borders":
			cfg.Output.BorderImage = *borderImage
		case "out-data":
			cfg.Output.LabelData = *labelData
		case "seed":
			cfg.Segmentation.RandomSeed = *randomSeed
		case "connectivity":
			cfg.Segmentation.Connectivity = *connectivity
		case "dilator":
			cfg.Segmentation.Dilator = *dilator
		case "save-intermediary":
			cfg.Output.SaveIntermediaryResults = *saveIntermediary
		case "region-masks":
			cfg.Output.RegionMasks = *regionMasks
		case "verbose":
			cfg.Output.Verbose = *verbose
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if *writeConfig {
		if err := config.SaveConfig(cfg, *configPath); err != nil {
			log.Fatalf("Failed to write configuration: %v", err)
		}
		fmt.Printf("Configuration written to %s\n", *configPath)
		return
	}

	// Validate inputs
	if *inputFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	level, err := logging.Level(cfg.Output.LogLevel, cfg.Output.Verbose)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	logger := logging.NewConsole(level)

	mode, err := cfg.ColorMode()
	if err != nil {
		log.Fatalf("Invalid color mode: %v", err)
	}
	opts, err := cfg.SegmentOptions(&logger)
	if err != nil {
		log.Fatalf("Invalid segmentation settings: %v", err)
	}
	if cfg.UseOpenCV() {
		dilator, release, err := openCVDilator(cfg.Segmentation.Connectivity)
		if err != nil {
			log.Fatalf("Failed to set up dilator: %v", err)
		}
		defer release()
		opts.Dilator = dilator
	}

	fmt.Println("================================")
	fmt.Println("ADAPTELS: INFORMATION-BOUNDED SUPERPIXEL SEGMENTATION")
	fmt.Println("================================")

	params := &pipeline.Params{
		InputFile:               *inputFile,
		LabelImage:              cfg.Output.LabelImage,
		BorderImage:             cfg.Output.BorderImage,
		LabelData:               cfg.Output.LabelData,
		Threshold:               cfg.Segmentation.Threshold,
		ColorMode:               mode,
		Options:                 opts,
		SaveIntermediaryResults: cfg.Output.SaveIntermediaryResults,
		IntermediaryDir:         cfg.Output.IntermediaryDir,
		RegionMasks:             cfg.Output.RegionMasks,
		Logger:                  &logger,
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	p := pipeline.New(params)
	startTime := time.Now()
	if err := p.Process(ctx); err != nil {
		log.Fatalf("Segmentation failed: %v", err)
	}
	totalTime := time.Since(startTime)

	metrics := p.GetMetrics()
	fmt.Printf("\nSegmentation completed in %.2f ms (adaptel growth %.2f ms)\n",
		float64(totalTime.Microseconds())/1000, float64(p.Elapsed().Microseconds())/1000)
	fmt.Printf("Threshold: %.3f, color mode: %s\n\n", params.Threshold, mode)

	fmt.Printf("Segmentation Metrics:\n")
	fmt.Printf("=====================\n")
	fmt.Printf("Adaptels: %d\n", metrics.Regions)
	fmt.Printf("Region size: mean %.1f, std-dev %.1f, min %d, max %d\n",
		metrics.MeanSize, metrics.StdDevSize, metrics.MinSize, metrics.MaxSize)
	fmt.Printf("Mean deviation from region mean: %.4f\n", metrics.MeanDeviation)
	fmt.Printf("Boundary pixels: %.2f%%\n", metrics.BoundaryFraction*100)
	fmt.Printf("Coverage: %.2f%%\n", metrics.Coverage*100)
	fmt.Printf("Queued candidates: %d\n", metrics.Candidates)

	if params.LabelImage != "" {
		fmt.Printf("\nLabel map saved to: %s\n", params.LabelImage)
	}
	if params.BorderImage != "" {
		fmt.Printf("Border overlay saved to: %s\n", params.BorderImage)
	}
	if params.LabelData != "" {
		fmt.Printf("Raw labels saved to: %s\n", params.LabelData)
	}

	// Print information about intermediary results if saved
	if params.SaveIntermediaryResults {
		fmt.Println("\nIntermediary results saved to:")
		fmt.Printf("%s\n", params.IntermediaryDir)
		fmt.Println("The following stages were saved:")
		fmt.Println("- 01_input: Source image and converted representation")
		fmt.Println("- 02_segmentation: Raw labels and per-region statistics")
		fmt.Println("- 03_rendered: Colored labels and border overlay")
		if params.RegionMasks {
			fmt.Println("- 03_rendered/regions: One binary mask per adaptel")
		}
	}
}
