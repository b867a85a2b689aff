package pipeline

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

func performOcr(ctx context.Context, enhancedChan <-chan enhancedItem, ocrChan chan<- pageText) error {
	proc, err := clientsFromContext(ctx)
	if err != nil {
		return fmt.Errorf("[performOcr]: %w", err)
	}
	ocrEngine := proc.engine

	for item := range enhancedChan {
		if ctx.Err() != nil {
			log.Debug("[performOcr]: context cancelled")
			item.release()
			return nil
		}

		log.Debugf("[performOcr]: processing page %d", item.page.Number)
		start := time.Now()
		recognized, err := ocrEngine.ProcessImage(ctx, item.processed)
		duration := time.Since(start)
		item.release()

		result := pageText{
			page:      item.page.Number,
			rendered:  item.page.Path,
			processed: item.processed,
			text:      recognized,
			duration:  duration,
			err:       err,
		}

		log.WithFields(log.Fields{"page": item.page.Number, "duration": duration}).Debug("[performOcr]: sending OCR result")
		select {
		case ocrChan <- result:
		case <-ctx.Done():
			log.Debugf("[performOcr]: context done while sending result for page %d", item.page.Number)
			return nil
		}
	}

	return nil
}
