package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

type GosseractEngine struct {
	language string
}

func NewGosseractEngine(language string) (*GosseractEngine, error) {
	return &GosseractEngine{language: language}, nil
}

// ProcessImage runs Tesseract via the cgo binding. A fresh client per call
// keeps the engine safe to share between OCR workers.
func (g *GosseractEngine) ProcessImage(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if g.language != "" {
		if err := client.SetLanguage(g.language); err != nil {
			return "", fmt.Errorf("setting language %q: %w", g.language, err)
		}
	}
	client.SetPageSegMode(gosseract.PSM_AUTO)

	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("setting image %s: %w", imagePath, err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to extract text from image %s: %w", imagePath, err)
	}

	return strings.TrimSpace(text), nil
}

func (g *GosseractEngine) Close() error {
	return nil
}
