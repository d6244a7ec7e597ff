package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"adaptels/internal/models"
	"adaptels/pkg/adaptel"
	"adaptels/pkg/colorspace"
	"adaptels/pkg/imageio"
	"adaptels/pkg/visualization"
)

// Params holds the inputs, outputs and segmentation settings of one
// pipeline run.
type Params struct {
	// InputFile is the image to segment.
	InputFile string

	// LabelImage receives the colored label map. Empty skips it.
	LabelImage string

	// BorderImage receives the source image with region borders inverted.
	// Empty skips it.
	BorderImage string

	// LabelData receives the raw label map. Empty skips it.
	LabelData string

	// Threshold is the information budget of one adaptel.
	Threshold float64

	// ColorMode selects the representation that is segmented.
	ColorMode colorspace.Mode

	// Options are passed through to the segmenter.
	Options adaptel.Options

	// SaveIntermediaryResults determines whether to save the converted
	// input, the label map and region statistics per stage.
	SaveIntermediaryResults bool

	// IntermediaryDir is where intermediary results are saved.
	IntermediaryDir string

	// RegionMasks adds one binary mask per region to the rendered
	// intermediary stage. It has no effect without SaveIntermediaryResults.
	RegionMasks bool

	// Logger receives progress events. Nil discards them.
	Logger *zerolog.Logger
}

// Pipeline loads an image, converts it, segments it and renders the result.
//
// The process consists of these steps:
// 1. Loading the input image
// 2. Converting it to the configured color representation
// 3. Growing adaptels until the image is fully labeled
// 4. Rendering and saving the label map and border overlay
// 5. Calculating segmentation metrics
type Pipeline struct {
	params *Params
	log    zerolog.Logger

	frame  *models.Frame
	input  *adaptel.Image
	labels *adaptel.LabelMap
	stats  []adaptel.RegionStats

	elapsed time.Duration
	metrics Metrics
}

// New creates a pipeline for the given parameters.
func New(params *Params) *Pipeline {
	p := &Pipeline{params: params, log: zerolog.Nop()}
	if params.Logger != nil {
		p.log = params.Logger.With().Str("component", "pipeline").Logger()
	}
	return p
}

// Process runs the complete pipeline. Cancelling ctx stops segmentation
// between two regions; the partial label map is then discarded.
func (p *Pipeline) Process(ctx context.Context) error {
	if p.params.SaveIntermediaryResults {
		if err := os.MkdirAll(p.params.IntermediaryDir, 0755); err != nil {
			return fmt.Errorf("failed to create intermediary directory: %w", err)
		}
	}

	p.log.Info().Str("file", p.params.InputFile).Msg("Step 1: Loading input image")
	frame, err := imageio.Load(p.params.InputFile)
	if err != nil {
		return fmt.Errorf("failed to load input: %w", err)
	}

	p.log.Info().Str("mode", p.params.ColorMode.String()).Msg("Step 2: Converting color representation")
	if err := p.SetFrame(frame); err != nil {
		return err
	}

	return p.Run(ctx)
}

// SetFrame installs an already decoded frame and converts it, for callers
// that load images themselves.
func (p *Pipeline) SetFrame(frame *models.Frame) error {
	if frame.Pixels() == 0 {
		return fmt.Errorf("input image %s is empty", frame.Filename)
	}
	p.frame = frame
	p.input = colorspace.Convert(frame.Image, p.params.ColorMode)
	p.log.Info().
		Int("width", frame.Width).
		Int("height", frame.Height).
		Str("format", p.input.Format.String()).
		Msg("input ready")

	if p.params.SaveIntermediaryResults {
		if err := p.saveIntermediaryResult("01_input", frame.Image, "source"); err != nil {
			p.log.Warn().Err(err).Msg("failed to save source image")
		}
		if preview, err := colorspace.ToRGBA(p.input, p.params.ColorMode); err == nil {
			if err := p.saveIntermediaryResult("01_input", preview, "converted"); err != nil {
				p.log.Warn().Err(err).Msg("failed to save converted image")
			}
		}
	}
	return nil
}

// Run segments the installed frame, saves the outputs and computes metrics.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.input == nil {
		return fmt.Errorf("no input frame installed")
	}

	p.log.Info().Float64("threshold", p.params.Threshold).Msg("Step 3: Growing adaptels")
	start := time.Now()
	run, err := adaptel.NewRun(p.input, p.params.Threshold, &p.params.Options)
	if err != nil {
		return fmt.Errorf("failed to start segmentation: %w", err)
	}
	if err := run.Complete(ctx); err != nil {
		return fmt.Errorf("segmentation interrupted after %d regions: %w", len(run.Stats()), err)
	}
	p.elapsed = time.Since(start)
	p.labels = run.Labels()
	p.stats = run.Stats()

	if p.params.SaveIntermediaryResults {
		if err := p.saveIntermediaryResult("02_segmentation", p.labels, "labels"); err != nil {
			p.log.Warn().Err(err).Msg("failed to save label data")
		}
		if err := p.saveIntermediaryResult("02_segmentation", p.stats, "regions"); err != nil {
			p.log.Warn().Err(err).Msg("failed to save region statistics")
		}
	}

	p.log.Info().Msg("Step 4: Rendering results")
	if err := p.render(); err != nil {
		return err
	}

	p.log.Info().Msg("Step 5: Calculating metrics")
	p.metrics = CalculateMetrics(p.input, p.labels)
	for _, st := range p.stats {
		p.metrics.Candidates += st.Candidates
	}
	return nil
}

// render writes the requested output images and label data.
func (p *Pipeline) render() error {
	viewer := visualization.NewViewer(p.labels, p.frame.Image)

	if p.params.LabelImage != "" {
		if err := viewer.SaveImage(viewer.LabelImage(), p.params.LabelImage); err != nil {
			return fmt.Errorf("failed to save label image: %w", err)
		}
	}

	var borders image.Image
	if p.params.BorderImage != "" || p.params.SaveIntermediaryResults {
		img, err := viewer.BorderImage()
		if err != nil {
			return fmt.Errorf("failed to draw borders: %w", err)
		}
		borders = img
	}
	if p.params.BorderImage != "" {
		if err := viewer.SaveImage(borders, p.params.BorderImage); err != nil {
			return fmt.Errorf("failed to save border image: %w", err)
		}
	}
	if p.params.SaveIntermediaryResults {
		if err := p.saveIntermediaryResult("03_rendered", viewer.LabelImage(), "labels"); err != nil {
			p.log.Warn().Err(err).Msg("failed to save rendered labels")
		}
		if err := p.saveIntermediaryResult("03_rendered", borders, "borders"); err != nil {
			p.log.Warn().Err(err).Msg("failed to save rendered borders")
		}
		if p.params.RegionMasks {
			dir := filepath.Join(p.params.IntermediaryDir, "03_rendered", "regions")
			if err := viewer.SaveRegionSequence(dir); err != nil {
				p.log.Warn().Err(err).Msg("failed to save region masks")
			} else {
				p.log.Debug().Str("dir", dir).Int32("regions", p.labels.MaxLabel()).Msg("region masks saved")
			}
		}
	}

	if p.params.LabelData != "" {
		if err := SaveLabelData(p.params.LabelData, p.labels); err != nil {
			return fmt.Errorf("failed to save label data: %w", err)
		}
	}
	return nil
}

// saveIntermediaryResult saves an intermediary result under a stage
// directory.
func (p *Pipeline) saveIntermediaryResult(stage string, data interface{}, name string) error {
	if !p.params.SaveIntermediaryResults {
		return nil
	}

	stageDir := filepath.Join(p.params.IntermediaryDir, stage)
	if err := os.MkdirAll(stageDir, 0755); err != nil {
		return fmt.Errorf("failed to create intermediary directory: %w", err)
	}

	switch v := data.(type) {
	case image.Image:
		return imageio.Save(filepath.Join(stageDir, name+".png"), v)

	case *adaptel.LabelMap:
		return SaveLabelData(filepath.Join(stageDir, name+".bin"), v)

	case []adaptel.RegionStats:
		file, err := os.Create(filepath.Join(stageDir, name+".txt"))
		if err != nil {
			return fmt.Errorf("failed to create text file: %w", err)
		}
		defer file.Close()

		fmt.Fprintf(file, "label\tseed_x\tseed_y\tpixels\tlabeled\tcandidates\telapsed_us\n")
		for _, st := range v {
			fmt.Fprintf(file, "%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
				st.Label, st.Seed.X, st.Seed.Y, st.Pixels, st.Labeled, st.Candidates, st.Elapsed.Microseconds())
		}
		return nil

	default:
		file, err := os.Create(filepath.Join(stageDir, name+".txt"))
		if err != nil {
			return fmt.Errorf("failed to create text file: %w", err)
		}
		defer file.Close()

		fmt.Fprintf(file, "%v", v)
	}
	return nil
}

// GetMetrics returns the metrics of the last run
func (p *Pipeline) GetMetrics() Metrics {
	return p.metrics
}

// Labels returns the label map of the last run
func (p *Pipeline) Labels() *adaptel.LabelMap {
	return p.labels
}

// Stats returns the per-region statistics of the last run
func (p *Pipeline) Stats() []adaptel.RegionStats {
	return p.stats
}

// Elapsed returns the time spent growing adaptels
func (p *Pipeline) Elapsed() time.Duration {
	return p.elapsed
}
