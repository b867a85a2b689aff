package archive

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type writeRequest struct {
	name       string
	data       []byte
	responseCh chan error
}

// ZipWriter serializes entry writes into a single ZIP archive through a
// worker goroutine, so pipeline stages can add entries concurrently without
// holding a lock around the underlying zip stream. The archive file is
// created lazily on the first entry.
type ZipWriter struct {
	path     string
	queue    chan writeRequest
	shutdown chan struct{}
	wg       sync.WaitGroup
	once     sync.Once

	// worker-owned, never touched outside the worker goroutine
	file *os.File
	zw   *zip.Writer

	closeMu  sync.Mutex
	closeErr error
}

func NewZipWriter(path string) *ZipWriter {
	w := &ZipWriter{
		path:     path,
		queue:    make(chan writeRequest, 100),
		shutdown: make(chan struct{}),
	}
	w.startWorker()
	return w
}

func (w *ZipWriter) startWorker() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case req := <-w.queue:
				req.responseCh <- w.writeEntrySync(req.name, req.data)
			case <-w.shutdown:
				w.finalize()
				return
			}
		}
	}()
}

// AddEntry stores data under the given name inside the archive. It blocks
// until the worker has written the entry.
func (w *ZipWriter) AddEntry(name string, data []byte) error {
	responseCh := make(chan error, 1)
	req := writeRequest{name: name, data: data, responseCh: responseCh}

	select {
	case w.queue <- req:
		return <-responseCh
	case <-w.shutdown:
		return fmt.Errorf("archive writer is shutting down")
	}
}

// Close flushes and finalizes the archive. Safe to call more than once.
func (w *ZipWriter) Close() error {
	w.once.Do(func() {
		close(w.shutdown)
		w.wg.Wait()
	})

	w.closeMu.Lock()
	defer w.closeMu.Unlock()
	return w.closeErr
}

func (w *ZipWriter) writeEntrySync(name string, data []byte) error {
	if w.zw == nil {
		if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		file, err := os.Create(w.path)
		if err != nil {
			return fmt.Errorf("creating archive %s: %w", w.path, err)
		}
		w.file = file
		w.zw = zip.NewWriter(file)
	}

	entry, err := w.zw.Create(name)
	if err != nil {
		return fmt.Errorf("creating archive entry %s: %w", name, err)
	}
	if _, err := entry.Write(data); err != nil {
		return fmt.Errorf("writing archive entry %s: %w", name, err)
	}
	return nil
}

func (w *ZipWriter) finalize() {
	if w.zw == nil {
		return
	}

	err := w.zw.Close()
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}

	w.closeMu.Lock()
	w.closeErr = err
	w.closeMu.Unlock()
}
