package pipeline

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"adaptels/pkg/adaptel"
)

// labelDataMagic starts every raw label file.
var labelDataMagic = [4]byte{'A', 'D', 'P', 'L'}

// MaxLabelDataPixels bounds the label map size ReadLabelData accepts.
const MaxLabelDataPixels = 1 << 28

// WriteLabelData writes lm as the magic bytes, width and height as
// little-endian int32 and the labels in row-major order.
func WriteLabelData(w io.Writer, lm *adaptel.LabelMap) error {
	bw := bufio.NewWriter(w)
	header := struct {
		Magic  [4]byte
		Width  int32
		Height int32
	}{labelDataMagic, int32(lm.Width), int32(lm.Height)}

	if err := binary.Write(bw, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, lm.Labels); err != nil {
		return fmt.Errorf("failed to write labels: %w", err)
	}
	return bw.Flush()
}

// ReadLabelData reads a label map written by WriteLabelData.
func ReadLabelData(r io.Reader) (*adaptel.LabelMap, error) {
	var header struct {
		Magic  [4]byte
		Width  int32
		Height int32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if header.Magic != labelDataMagic {
		return nil, fmt.Errorf("not a label data file")
	}
	if header.Width < 0 || header.Height < 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", header.Width, header.Height)
	}
	if int64(header.Width)*int64(header.Height) > MaxLabelDataPixels {
		return nil, fmt.Errorf("label map %dx%d exceeds %d pixels", header.Width, header.Height, MaxLabelDataPixels)
	}

	lm := adaptel.NewLabelMap(int(header.Width), int(header.Height))
	if err := binary.Read(r, binary.LittleEndian, lm.Labels); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	return lm, nil
}

// SaveLabelData writes lm to path.
func SaveLabelData(path string, lm *adaptel.LabelMap) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create binary file: %w", err)
	}
	if err := WriteLabelData(file, lm); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// LoadLabelData reads a label map from path.
func LoadLabelData(path string) (*adaptel.LabelMap, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadLabelData(bufio.NewReader(file))
}
