package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dms1981/python-ocr/internal/archive"
	"github.com/dms1981/python-ocr/internal/imageproc"
	"github.com/dms1981/python-ocr/internal/ocr"
	"github.com/dms1981/python-ocr/internal/render"
	"github.com/dms1981/python-ocr/internal/report"
	"github.com/dms1981/python-ocr/internal/text"
)

// Options configures a single PDF run.
type Options struct {
	Engine     string
	Language   string
	Workers    int
	DPI        int
	KeepImages bool
	ReportPath string
	RunID      string
}

// PageResult is the outcome for one successfully OCRed page.
type PageResult struct {
	Page     int
	Text     string
	Stats    text.Stats
	Duration time.Duration
}

// pageText carries a page through the OCR and output stages.
type pageText struct {
	page      int
	rendered  string
	processed string
	text      string
	duration  time.Duration
	err       error
}

type runResult struct {
	mu       sync.Mutex
	pages    map[int]PageResult
	failures map[string]error
}

type Clients struct {
	renderer *render.Renderer
	image    *imageproc.Processor
	engine   ocr.Engine
	archive  *archive.ZipWriter
	report   *report.Writer // nil when no report was requested
}

type contextKey string

const clientsKey contextKey = "pipeline_clients"

const optionsKey contextKey = "pipeline_options"

// Run OCRs one PDF into outputZip: render pages, clean them up, OCR them
// with a bounded worker pool, and archive the per-page text. It returns
// the successful pages and whatever failed, keyed by page or stage.
func Run(ctx context.Context, opts Options, pdfPath, outputZip string) (pages map[int]PageResult, failures map[string]error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	runLog := log.WithFields(log.Fields{"run_id": opts.RunID, "pdf": pdfPath})
	runLog.WithFields(log.Fields{"engine": opts.Engine, "output": outputZip}).Info("pipeline started")

	ocrEngine, err := ocr.NewEngine(opts.Engine, opts.Language)
	if err != nil {
		runLog.WithError(err).Error("failed to create OCR engine")
		return nil, map[string]error{"engine": err}
	}
	defer func() {
		runLog.Debug("closing OCR engine")
		ocrEngine.Close()
	}()

	workDir, err := os.MkdirTemp("", "pdfocr-*")
	if err != nil {
		return nil, map[string]error{"workdir": fmt.Errorf("creating work directory: %w", err)}
	}
	if opts.KeepImages {
		runLog.WithField("dir", workDir).Info("keeping rendered images")
	} else {
		defer os.RemoveAll(workDir)
	}

	clients := &Clients{
		renderer: render.NewRenderer(opts.DPI),
		image:    imageproc.NewProcessor(),
		engine:   ocrEngine,
		archive:  archive.NewZipWriter(outputZip),
	}
	if opts.ReportPath != "" {
		clients.report = report.NewWriter(opts.ReportPath)
	}

	// Embed clients in context
	ctx = context.WithValue(ctx, clientsKey, clients)
	ctx = context.WithValue(ctx, optionsKey, opts)

	errcList := &errorChans{}
	renderErrc := errcList.new("render")
	enhanceErrc := errcList.new("enhance")
	ocrErrc := errcList.new("ocr")
	cleanupErrc := errcList.new("cleanup")
	writeErrc := errcList.new("write")

	rendered := make(chan render.Page)
	enhancedChan := make(chan enhancedItem, 2) // bounded buffer to throttle preprocessing
	ocrChan := make(chan pageText)
	throttled := make(chan struct{}, opts.Workers+2) // permits for processed images on disk

	results := &runResult{
		pages:    make(map[int]PageResult),
		failures: make(map[string]error),
	}

	go func() {
		defer close(rendered)
		defer close(renderErrc.c)
		runLog.Debug("starting [renderPages] goroutine")
		renderPages(ctx, pdfPath, workDir, rendered, renderErrc.c)
		runLog.Debug("[renderPages] goroutine finished")
	}()

	go func() {
		defer close(enhancedChan)
		defer close(enhanceErrc.c)
		runLog.Debug("starting [enhanceImage] goroutine")
		enhanceImage(ctx, rendered, enhancedChan, throttled, enhanceErrc.c)
		runLog.Debug("[enhanceImage] goroutine finished")
	}()

	grp := new(errgroup.Group)
	for i := 0; i < opts.Workers; i++ {
		worker := i
		grp.Go(func() error {
			runLog.WithField("worker", worker+1).Debug("starting [performOcr] worker")
			defer runLog.WithField("worker", worker+1).Debug("[performOcr] worker finished")
			return performOcr(ctx, enhancedChan, ocrChan)
		})
	}
	go func() {
		if err := grp.Wait(); err != nil {
			ocrErrc.c <- err
		}
		runLog.Debug("all [performOcr] workers finished, closing ocrChan")
		close(ocrChan)
		close(ocrErrc.c)
	}()

	// fan-out - forward OCR results to output writing + image cleanup
	writeInput := make(chan pageText)
	cleanupInput := make(chan pageText, 10)

	go func() {
		runLog.Debug("starting [forwardChan] for ocrChan -> writeInput, cleanupInput")
		forwardChan(ctx, ocrChan, writeInput, cleanupInput)
		runLog.Debug("[forwardChan] for ocrChan finished")
	}()

	go func() {
		defer close(cleanupErrc.c)
		runLog.Debug("starting [cleanupImage] goroutine")
		cleanupImage(ctx, cleanupInput, cleanupErrc.c)
		runLog.Debug("[cleanupImage] goroutine finished")
	}()

	var writeWg sync.WaitGroup
	writeWg.Add(1)
	go func() {
		defer writeWg.Done()
		defer close(writeErrc.c)
		runLog.Debug("starting [writeOutput] goroutine")
		writeOutput(ctx, writeInput, results, writeErrc.c)
		runLog.Debug("[writeOutput] goroutine finished")
	}()

	// Drain stage errors while the pipeline runs so a noisy stage can
	// never block on a full error channel.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for err := range mergeErrors(errcList.list...) {
			if err != nil {
				runLog.WithError(err).Debug("stage error collected")
				results.addStageFailure(err)
			}
		}
	}()

	writeWg.Wait()

	if err := clients.archive.Close(); err != nil {
		results.addFailure("archive", err)
	}
	if clients.report != nil {
		if err := clients.report.Close(); err != nil {
			results.addFailure("report", err)
		}
	}

	<-drained

	runLog.WithFields(log.Fields{
		"pages":    len(results.pages),
		"failures": len(results.failures),
	}).Info("pipeline finished")

	return results.pages, results.failures
}

func forwardChan[T any](ctx context.Context, in <-chan T, outs ...chan<- T) {
	defer func() {
		for _, out := range outs {
			close(out)
		}
	}()

	for res := range in {
		if ctx.Err() != nil {
			log.Debug("forwardChan: context cancelled")
			return
		}

		for _, out := range outs {
			select {
			case out <- res:
			case <-ctx.Done():
				log.Debug("forwardChan: context done while forwarding")
				return
			}
		}
	}
}

func (r *runResult) addPage(res PageResult) {
	r.mu.Lock()
	r.pages[res.Page] = res
	r.mu.Unlock()
}

func (r *runResult) addFailure(key string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	base := key
	for i := 2; ; i++ {
		if _, ok := r.failures[key]; !ok {
			break
		}
		key = fmt.Sprintf("%s#%d", base, i)
	}
	r.failures[key] = err
}

// addStageFailure records an error already wrapped with its stage name.
func (r *runResult) addStageFailure(err error) {
	r.addFailure("pipeline_error", err)
}

func clientsFromContext(ctx context.Context) (*Clients, error) {
	proc, ok := ctx.Value(clientsKey).(*Clients)
	if !ok {
		return nil, fmt.Errorf("missing clients in context")
	}
	return proc, nil
}

func optionsFromContext(ctx context.Context) Options {
	opts, _ := ctx.Value(optionsKey).(Options)
	return opts
}
