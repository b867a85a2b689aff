package pipeline

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/dms1981/python-ocr/internal/render"
)

type enhancedItem struct {
	page      render.Page
	processed string
	release   func()
}

func enhanceImage(ctx context.Context, pages <-chan render.Page, results chan<- enhancedItem, throttledChan chan struct{}, errChan chan<- error) {
	proc, err := clientsFromContext(ctx)
	if err != nil {
		errChan <- fmt.Errorf("[enhanceImage]: %w", err)
		return
	}
	imageProcessor := proc.image

	for page := range pages {
		if ctx.Err() != nil {
			log.Debug("[enhanceImage]: context cancelled")
			return
		}

		select {
		case throttledChan <- struct{}{}:
		case <-ctx.Done():
			log.Debugf("[enhanceImage]: context done before acquiring permit for page %d", page.Number)
			return
		}

		log.WithFields(log.Fields{"page": page.Number, "permits": len(throttledChan)}).Debug("[enhanceImage]: enhancing page")
		processed, err := imageProcessor.Process(page.Path)
		if err != nil {
			<-throttledChan
			log.WithError(err).Debugf("[enhanceImage]: error processing page %d", page.Number)
			errChan <- fmt.Errorf("preprocessing page %d (%s): %w", page.Number, page.Path, err)
			continue
		}

		release := func() { <-throttledChan }

		select {
		case results <- enhancedItem{page: page, processed: processed, release: release}:
		case <-ctx.Done():
			log.Debugf("[enhanceImage]: context done while sending page %d", page.Number)
			release()
			return
		}
	}
}

func cleanupImage(ctx context.Context, ocrChan <-chan pageText, errChan chan<- error) {
	proc, err := clientsFromContext(ctx)
	if err != nil {
		errChan <- fmt.Errorf("[cleanupImage]: %w", err)
		return
	}
	imageProcessor := proc.image

	keep := optionsFromContext(ctx).KeepImages

	for res := range ocrChan {
		if ctx.Err() != nil {
			log.Debug("[cleanupImage]: context cancelled")
			return
		}

		if keep {
			continue
		}
		if res.err != nil {
			// Leave the processed image behind for inspection.
			log.Debugf("[cleanupImage]: skipping page %d due to OCR error", res.page)
			continue
		}

		log.Debugf("[cleanupImage]: removing %s", res.processed)
		if err := imageProcessor.Cleanup(res.processed); err != nil {
			log.WithError(err).Debugf("[cleanupImage]: error removing %s", res.processed)
			errChan <- fmt.Errorf("cleanup image %s: %w", res.processed, err)
		}
	}
}
