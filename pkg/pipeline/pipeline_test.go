package pipeline

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"adaptels/internal/models"
	"adaptels/pkg/adaptel"
	"adaptels/pkg/colorspace"
	"adaptels/pkg/imageio"
)

// createTestImage creates an image with two flat halves of different color
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < width/2 {
				img.Set(x, y, color.RGBA{20, 40, 200, 255})
			} else {
				img.Set(x, y, color.RGBA{230, 200, 10, 255})
			}
		}
	}
	return img
}

// TestCalculateMetrics verifies metrics on a known label map
func TestCalculateMetrics(t *testing.T) {
	img := adaptel.NewGrayImage(8, 1, []float32{0, 0, 0, 0, 1, 1, 1, 3})
	lm := adaptel.NewLabelMap(8, 1)
	copy(lm.Labels, []int32{1, 1, 1, 1, 2, 2, 2, 2})

	m := CalculateMetrics(img, lm)

	if m.Regions != 2 {
		t.Errorf("Expected 2 regions, got %d", m.Regions)
	}
	if m.MeanSize != 4 || m.StdDevSize != 0 || m.MinSize != 4 || m.MaxSize != 4 {
		t.Errorf("Unexpected size statistics %+v", m)
	}
	if m.Coverage != 1 {
		t.Errorf("Expected full coverage, got %f", m.Coverage)
	}
	// region 2 has mean 1.5: deviations 0.5, 0.5, 0.5, 1.5
	if math.Abs(m.MeanDeviation-3.0/8.0) > 1e-9 {
		t.Errorf("Expected mean deviation 0.375, got %f", m.MeanDeviation)
	}
	if math.Abs(m.BoundaryFraction-1.0/8.0) > 1e-9 {
		t.Errorf("Expected boundary fraction 0.125, got %f", m.BoundaryFraction)
	}
}

// TestLabelDataRoundTrip verifies the raw label format
func TestLabelDataRoundTrip(t *testing.T) {
	lm := adaptel.NewLabelMap(3, 2)
	copy(lm.Labels, []int32{1, 1, 2, 3, 3, 2})

	var buf bytes.Buffer
	if err := WriteLabelData(&buf, lm); err != nil {
		t.Fatalf("Failed to write label data: %v", err)
	}
	if buf.Len() != 12+6*4 {
		t.Errorf("Expected %d bytes, got %d", 12+6*4, buf.Len())
	}

	got, err := ReadLabelData(&buf)
	if err != nil {
		t.Fatalf("Failed to read label data: %v", err)
	}
	if got.Width != 3 || got.Height != 2 {
		t.Fatalf("Expected 3x2, got %dx%d", got.Width, got.Height)
	}
	for i := range lm.Labels {
		if got.Labels[i] != lm.Labels[i] {
			t.Errorf("Label %d: expected %d, got %d", i, lm.Labels[i], got.Labels[i])
		}
	}

	if _, err := ReadLabelData(bytes.NewReader([]byte("NOPE00000000"))); err == nil {
		t.Error("Expected error for bad magic, got nil")
	}
}

// TestReadLabelDataBadHeader verifies that impossible dimensions are rejected
func TestReadLabelDataBadHeader(t *testing.T) {
	cases := map[string][2]int32{
		"oversized": {1 << 30, 1 << 30},
		"negative":  {-1, 4},
	}
	for name, dims := range cases {
		var buf bytes.Buffer
		buf.WriteString("ADPL")
		binary.Write(&buf, binary.LittleEndian, dims)

		if _, err := ReadLabelData(&buf); err == nil {
			t.Errorf("%s: expected error for %dx%d header, got nil", name, dims[0], dims[1])
		}
	}

	var short bytes.Buffer
	short.WriteString("ADPL")
	binary.Write(&short, binary.LittleEndian, [2]int32{4, 4})
	binary.Write(&short, binary.LittleEndian, []int32{1, 2, 3})
	if _, err := ReadLabelData(&short); err == nil {
		t.Error("Expected error for truncated labels, got nil")
	}
}

// TestRunFromFrame verifies segmentation of an in-memory frame
func TestRunFromFrame(t *testing.T) {
	params := &Params{
		Threshold: 0.5,
		ColorMode: colorspace.Lab,
		Options:   adaptel.DefaultOptions(),
	}
	p := New(params)

	frame := models.NewFrame(createTestImage(10, 6), "memory", "rgba")
	if err := p.SetFrame(frame); err != nil {
		t.Fatalf("SetFrame failed: %v", err)
	}
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	m := p.GetMetrics()
	if m.Regions != 2 {
		t.Errorf("Expected 2 regions for two flat halves, got %d", m.Regions)
	}
	if m.Coverage != 1 {
		t.Errorf("Expected full coverage, got %f", m.Coverage)
	}
	if len(p.Stats()) != m.Regions {
		t.Errorf("Expected %d region stats, got %d", m.Regions, len(p.Stats()))
	}
}

// TestRunCancelled verifies that a cancelled context interrupts segmentation
func TestRunCancelled(t *testing.T) {
	p := New(&Params{Threshold: 1.0, ColorMode: colorspace.Gray})
	if err := p.SetFrame(models.NewFrame(createTestImage(4, 4), "memory", "rgba")); err != nil {
		t.Fatalf("SetFrame failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Run(ctx); err == nil {
		t.Error("Expected error for cancelled context, got nil")
	}
}

// TestProcess runs the whole pipeline against files on disk
func TestProcess(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tmpDir := t.TempDir()
	input := filepath.Join(tmpDir, "input.png")
	if err := imageio.Save(input, createTestImage(16, 12)); err != nil {
		t.Fatalf("Failed to write input: %v", err)
	}

	params := &Params{
		InputFile:               input,
		LabelImage:              filepath.Join(tmpDir, "out", "labels.png"),
		BorderImage:             filepath.Join(tmpDir, "out", "borders.jpg"),
		LabelData:               filepath.Join(tmpDir, "out", "labels.bin"),
		Threshold:               1.0,
		ColorMode:               colorspace.Gray,
		Options:                 adaptel.DefaultOptions(),
		SaveIntermediaryResults: true,
		IntermediaryDir:         filepath.Join(tmpDir, "intermediary"),
		RegionMasks:             true,
	}
	p := New(params)
	if err := p.Process(context.Background()); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	for _, path := range []string{
		params.LabelImage,
		params.BorderImage,
		params.LabelData,
		filepath.Join(params.IntermediaryDir, "01_input", "source.png"),
		filepath.Join(params.IntermediaryDir, "01_input", "converted.png"),
		filepath.Join(params.IntermediaryDir, "02_segmentation", "labels.bin"),
		filepath.Join(params.IntermediaryDir, "02_segmentation", "regions.txt"),
		filepath.Join(params.IntermediaryDir, "03_rendered", "borders.png"),
		filepath.Join(params.IntermediaryDir, "03_rendered", "regions", "region_0001.png"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected output %s: %v", path, err)
		}
	}

	lm, err := LoadLabelData(params.LabelData)
	if err != nil {
		t.Fatalf("Failed to load label data: %v", err)
	}
	if lm.Unlabeled() != 0 {
		t.Errorf("Expected a fully labeled map, %d pixels unlabeled", lm.Unlabeled())
	}

	masks, err := os.ReadDir(filepath.Join(params.IntermediaryDir, "03_rendered", "regions"))
	if err != nil {
		t.Fatalf("Failed to list region masks: %v", err)
	}
	if len(masks) != int(lm.MaxLabel()) {
		t.Errorf("Expected %d region masks, got %d", lm.MaxLabel(), len(masks))
	}
}

// TestProcessMissingInput verifies the load error
func TestProcessMissingInput(t *testing.T) {
	p := New(&Params{InputFile: filepath.Join(t.TempDir(), "none.png")})
	if err := p.Process(context.Background()); err == nil {
		t.Error("Expected error for missing input, got nil")
	}
}
