// Package render converts PDF pages to images by shelling out to
// poppler-utils. pdfinfo supplies the page count up front so the pipeline
// can size its work, and pdftoppm does the actual rasterization.
package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
)

// lookPath is the exec.LookPath implementation used by Available.
// Tests may replace it to simulate a missing poppler install.
var lookPath = exec.LookPath

const pagePrefix = "page"

// Page is a single rendered PDF page.
type Page struct {
	Number int
	Path   string
}

type Renderer struct {
	dpi int
}

func NewRenderer(dpi int) *Renderer {
	return &Renderer{dpi: dpi}
}

// Available reports whether the poppler binaries are on PATH.
func Available() bool {
	if _, err := lookPath("pdftoppm"); err != nil {
		return false
	}
	_, err := lookPath("pdfinfo")
	return err == nil
}

// InstallHint returns the platform-appropriate way to install poppler.
func InstallHint() string {
	switch runtime.GOOS {
	case "darwin":
		return "install with: brew install poppler"
	case "windows":
		return "download from: https://github.com/oschwartz10612/poppler-windows/releases"
	default:
		return "install with: apt-get install poppler-utils"
	}
}

// PageCount reads the page count from pdfinfo output.
func (r *Renderer) PageCount(ctx context.Context, pdfPath string) (int, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return 0, fmt.Errorf("reading PDF %s: %w", pdfPath, err)
	}

	out, err := exec.CommandContext(ctx, "pdfinfo", pdfPath).Output()
	if err != nil {
		return 0, fmt.Errorf("pdfinfo %s: %w", pdfPath, err)
	}

	return parsePageCount(out)
}

func parsePageCount(out []byte) (int, error) {
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
		if err != nil {
			return 0, fmt.Errorf("parsing page count %q: %w", line, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("no page count in pdfinfo output")
}

// RenderPages rasterizes every page of the PDF into outDir as PNG files
// and returns them ordered by page number. A PDF with no pages is an
// error: there is nothing to OCR.
func (r *Renderer) RenderPages(ctx context.Context, pdfPath, outDir string) ([]Page, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return nil, fmt.Errorf("reading PDF %s: %w", pdfPath, err)
	}

	prefix := filepath.Join(outDir, pagePrefix)
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-r", strconv.Itoa(r.dpi),
		"-png",
		pdfPath,
		prefix,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("pdftoppm %s: %s: %w", pdfPath, msg, err)
		}
		return nil, fmt.Errorf("pdftoppm %s: %w", pdfPath, err)
	}

	pages, err := collectPages(outDir)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages rendered from %s", pdfPath)
	}
	return pages, nil
}

// collectPages gathers pdftoppm output files. pdftoppm zero-pads page
// numbers depending on the total count (page-1.png, page-01.png, ...), so
// the number is parsed from the trailing digits rather than assumed.
func collectPages(outDir string) ([]Page, error) {
	matches, err := filepath.Glob(filepath.Join(outDir, pagePrefix+"-*.png"))
	if err != nil {
		return nil, fmt.Errorf("globbing rendered pages: %w", err)
	}

	pages := make([]Page, 0, len(matches))
	for _, m := range matches {
		n, err := parsePageNumber(m)
		if err != nil {
			return nil, err
		}
		pages = append(pages, Page{Number: n, Path: m})
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	return pages, nil
}

func parsePageNumber(path string) (int, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	idx := strings.LastIndex(name, "-")
	if idx < 0 {
		return 0, fmt.Errorf("unexpected rendered page name %q", name)
	}
	n, err := strconv.Atoi(name[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("parsing page number from %q: %w", name, err)
	}
	return n, nil
}
