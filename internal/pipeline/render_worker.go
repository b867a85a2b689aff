package pipeline

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/dms1981/python-ocr/internal/render"
)

func renderPages(ctx context.Context, pdfPath, workDir string, results chan<- render.Page, errChan chan<- error) {
	proc, err := clientsFromContext(ctx)
	if err != nil {
		errChan <- fmt.Errorf("[renderPages]: %w", err)
		return
	}
	renderer := proc.renderer

	count, err := renderer.PageCount(ctx, pdfPath)
	if err != nil {
		errChan <- fmt.Errorf("[renderPages]: counting pages: %w", err)
		return
	}
	log.WithFields(log.Fields{"pdf": pdfPath, "pages": count}).Info("converting PDF")

	pages, err := renderer.RenderPages(ctx, pdfPath, workDir)
	if err != nil {
		errChan <- fmt.Errorf("[renderPages]: %w", err)
		return
	}

	for _, page := range pages {
		if ctx.Err() != nil {
			log.Debug("[renderPages]: context cancelled")
			return
		}

		log.WithFields(log.Fields{"page": page.Number, "path": page.Path}).Debug("[renderPages]: sending page")
		select {
		case results <- page:
		case <-ctx.Done():
			log.Debugf("[renderPages]: context done while sending page %d", page.Number)
			return
		}
	}
}
