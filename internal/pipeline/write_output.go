package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/dms1981/python-ocr/internal/report"
	"github.com/dms1981/python-ocr/internal/text"
)

func writeOutput(ctx context.Context, ocrChan <-chan pageText, results *runResult, errChan chan<- error) {
	proc, err := clientsFromContext(ctx)
	if err != nil {
		errChan <- fmt.Errorf("[writeOutput]: %w", err)
		return
	}

	for res := range ocrChan {
		if ctx.Err() != nil {
			log.Debug("[writeOutput]: context cancelled")
			return
		}

		pageKey := fmt.Sprintf("page_%d", res.page)

		if res.err != nil {
			log.WithError(res.err).Debugf("[writeOutput]: OCR failure for page %d", res.page)
			results.addFailure(pageKey, res.err)
			reportRow(proc, res, errChan)
			continue
		}

		cleaned := text.RepairDigits(text.Normalize(res.text))
		stats := text.Measure(cleaned)

		entryName := fmt.Sprintf("page_%d.txt", res.page)
		if err := proc.archive.AddEntry(entryName, []byte(cleaned+"\n")); err != nil {
			log.WithError(err).Debugf("[writeOutput]: error archiving page %d", res.page)
			results.addFailure(pageKey, fmt.Errorf("archiving %s: %w", entryName, err))
			continue
		}

		res.text = cleaned
		reportRow(proc, res, errChan)

		log.Debugf("[writeOutput]: archived %s", entryName)
		results.addPage(PageResult{
			Page:     res.page,
			Text:     cleaned,
			Stats:    stats,
			Duration: res.duration,
		})
	}
}

func reportRow(proc *Clients, res pageText, errChan chan<- error) {
	if proc.report == nil {
		return
	}

	row := report.Row{
		File:     filepath.Base(res.rendered),
		Page:     res.page,
		Duration: res.duration,
	}
	if res.err != nil {
		row.Error = res.err.Error()
	} else {
		stats := text.Measure(res.text)
		row.Characters = stats.Characters
		row.Words = stats.Words
	}

	if err := proc.report.Append(row); err != nil {
		errChan <- fmt.Errorf("appending report row for page %d: %w", res.page, err)
	}
}
