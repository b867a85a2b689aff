package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// TesseractEngine shells out to the tesseract binary. It is the cgo-free
// fallback for builds where linking libtesseract is not an option.
type TesseractEngine struct {
	binary   string
	language string
}

func NewTesseractEngine(language string) *TesseractEngine {
	path, _ := exec.LookPath("tesseract")
	if path == "" {
		path = "tesseract"
	}
	return &TesseractEngine{binary: path, language: language}
}

func (t *TesseractEngine) ProcessImage(ctx context.Context, imagePath string) (string, error) {
	args := []string{imagePath, "stdout"}
	if t.language != "" {
		args = append(args, "-l", t.language)
	}

	cmd := exec.CommandContext(ctx, t.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("tesseract %s: %s: %w", imagePath, msg, err)
		}
		return "", fmt.Errorf("tesseract %s: %w", imagePath, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

func (t *TesseractEngine) Close() error {
	return nil
}
