package ocr

import "context"

// Result carries one page's OCR output through the pipeline.
type Result struct {
	Page int
	Path string
	Text string
	Err  error
}

type Engine interface {
	ProcessImage(ctx context.Context, imagePath string) (string, error)
	Close() error
}
