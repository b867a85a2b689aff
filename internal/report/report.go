package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// Row is one page's entry in the optional CSV run report.
type Row struct {
	File       string
	Page       int
	Characters int
	Words      int
	Duration   time.Duration
	Error      string
}

func Header() []string {
	return []string{"File", "Page", "Characters", "Words", "DurationMS", "Error"}
}

func (r Row) record() []string {
	return []string{
		r.File,
		strconv.Itoa(r.Page),
		strconv.Itoa(r.Characters),
		strconv.Itoa(r.Words),
		strconv.FormatInt(r.Duration.Milliseconds(), 10),
		r.Error,
	}
}

type writeRequest struct {
	rows       []Row
	responseCh chan error
}

// Writer appends report rows to a single CSV file through a worker
// goroutine, so concurrent pipeline stages never interleave records. The
// header is written once, before the first row.
type Writer struct {
	path     string
	queue    chan writeRequest
	shutdown chan struct{}
	wg       sync.WaitGroup
	once     sync.Once

	// worker-owned
	file          *os.File
	csvw          *csv.Writer
	headerWritten bool

	closeMu  sync.Mutex
	closeErr error
}

func NewWriter(path string) *Writer {
	w := &Writer{
		path:     path,
		queue:    make(chan writeRequest, 100),
		shutdown: make(chan struct{}),
	}
	w.startWorker()
	return w
}

func (w *Writer) startWorker() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case req := <-w.queue:
				req.responseCh <- w.writeRowsSync(req.rows)
			case <-w.shutdown:
				w.finalize()
				return
			}
		}
	}()
}

// Append writes rows to the report. It blocks until the worker is done
// with them.
func (w *Writer) Append(rows ...Row) error {
	if len(rows) == 0 {
		return nil
	}

	responseCh := make(chan error, 1)
	req := writeRequest{rows: rows, responseCh: responseCh}

	select {
	case w.queue <- req:
		return <-responseCh
	case <-w.shutdown:
		return fmt.Errorf("report writer is shutting down")
	}
}

// Close flushes the report. Safe to call more than once.
func (w *Writer) Close() error {
	w.once.Do(func() {
		close(w.shutdown)
		w.wg.Wait()
	})

	w.closeMu.Lock()
	defer w.closeMu.Unlock()
	return w.closeErr
}

func (w *Writer) writeRowsSync(rows []Row) error {
	if w.csvw == nil {
		if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
		file, err := os.Create(w.path)
		if err != nil {
			return fmt.Errorf("creating report %s: %w", w.path, err)
		}
		w.file = file
		w.csvw = csv.NewWriter(file)
	}

	if !w.headerWritten {
		if err := w.csvw.Write(Header()); err != nil {
			return fmt.Errorf("writing report header: %w", err)
		}
		w.headerWritten = true
	}

	for _, row := range rows {
		if err := w.csvw.Write(row.record()); err != nil {
			return fmt.Errorf("writing report row: %w", err)
		}
	}

	w.csvw.Flush()
	return w.csvw.Error()
}

func (w *Writer) finalize() {
	if w.csvw == nil {
		return
	}

	w.csvw.Flush()
	err := w.csvw.Error()
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}

	w.closeMu.Lock()
	w.closeErr = err
	w.closeMu.Unlock()
}
