package imageproc

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	// Pages rendered below this size are upscaled before OCR.
	minDimension = 300

	// Rotations below this angle hurt more than they help.
	minSkewDegrees = 0.5
)

type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

// Process cleans a rendered page image for OCR: upscale small pages,
// grayscale, bump contrast, sharpen, straighten detected skew, then
// binarize. The result is written next to the input as
// <name>_processed.png and the caller owns its cleanup.
func (p *Processor) Process(path string) (string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening image %s: %w", path, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() < minDimension || bounds.Dy() < minDimension {
		img = imaging.Resize(img, bounds.Dx()*2, bounds.Dy()*2, imaging.Lanczos)
	}

	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, 10)
	gray = imaging.Sharpen(gray, 1.1)

	if angle := DetectSkew(gray); math.Abs(angle) >= minSkewDegrees {
		gray = imaging.Rotate(gray, angle, color.White)
	}

	binary := Binarize(gray)

	processed := processedPath(path)
	if err := imaging.Save(binary, processed); err != nil {
		return "", fmt.Errorf("saving processed image: %w", err)
	}

	return processed, nil
}

func (p *Processor) Cleanup(path string) error {
	return os.Remove(path)
}

func processedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_processed.png"
}

// IsProcessed reports whether a filename was produced by Process, so
// directory walks never feed our own output back into the pipeline.
func IsProcessed(filename string) bool {
	return strings.Contains(filename, "_processed")
}
