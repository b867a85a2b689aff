package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dms1981/python-ocr/internal/config"
	"github.com/dms1981/python-ocr/internal/ocr"
	"github.com/dms1981/python-ocr/internal/pipeline"
	"github.com/dms1981/python-ocr/internal/render"
)

type CLI struct {
	inputPath  string
	outputPath string
	engineType string
	language   string
	dpi        int
	workers    int
	keepImages bool
	reportPath string
}

func NewCLI(cfg *config.Config) *CLI {
	return &CLI{
		engineType: cfg.OCR.Engine,
		language:   cfg.OCR.Language,
		workers:    cfg.OCR.Workers,
		dpi:        cfg.Render.DPI,
		keepImages: cfg.Render.KeepImages,
	}
}

func (c *CLI) Run(args []string) error {
	fs := flag.NewFlagSet("pdf-ocr", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: pdf-ocr [flags] <pdf-file-or-directory>\n\n")
		fmt.Fprintf(fs.Output(), "OCR scanned PDF files into a ZIP archive of per-page text.\n\n")
		fs.PrintDefaults()
	}

	fs.StringVar(&c.outputPath, "output", c.outputPath, "Output ZIP path (default: <pdf stem>_ocr.zip), or a directory for multiple PDFs")
	fs.StringVar(&c.outputPath, "o", c.outputPath, "Shorthand for -output")
	fs.StringVar(&c.engineType, "engine", c.engineType, "OCR engine type (gosseract, tesseract)")
	fs.StringVar(&c.language, "lang", c.language, "OCR language passed to Tesseract (e.g. eng, eng+deu)")
	fs.IntVar(&c.dpi, "dpi", c.dpi, "Render resolution for PDF pages")
	fs.IntVar(&c.workers, "workers", c.workers, "Number of OCR workers")
	fs.BoolVar(&c.keepImages, "keep-images", c.keepImages, "Keep rendered and processed page images")
	fs.StringVar(&c.reportPath, "report", c.reportPath, "Write a CSV run report to this path")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return nil
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("expected one input path, got %d", fs.NArg())
	}
	c.inputPath = fs.Arg(0)

	return c.process()
}

func (c *CLI) process() error {
	if err := checkSystemDeps(); err != nil {
		return err
	}

	pdfs, err := pipeline.FindPDFs(c.inputPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	multiple := len(pdfs) > 1
	var failed int
	for _, pdf := range pdfs {
		outputZip := c.outputFor(pdf, multiple)
		opts := pipeline.Options{
			Engine:     c.engineType,
			Language:   c.language,
			Workers:    c.workers,
			DPI:        c.dpi,
			KeepImages: c.keepImages,
			ReportPath: c.reportFor(pdf, multiple),
		}

		results, failures := pipeline.Run(ctx, opts, pdf, outputZip)
		for key, err := range failures {
			fmt.Printf("Error processing %s (%s): %v\n", pdf, key, err)
		}
		if len(results) == 0 {
			failed++
			continue
		}
		fmt.Printf("OCR processing complete. %d page(s) from %s saved to %s\n", len(results), pdf, outputZip)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d PDF(s) produced no output", failed, len(pdfs))
	}
	return nil
}

// checkSystemDeps mirrors the startup checks of the original tool: fail
// fast with an install hint when Tesseract or poppler are missing.
func checkSystemDeps() error {
	if !ocr.Available() {
		return fmt.Errorf("tesseract OCR is not installed or not in PATH; %s", ocr.InstallHint())
	}
	if !render.Available() {
		return fmt.Errorf("poppler is not installed (required to render PDF pages); %s", render.InstallHint())
	}
	return nil
}

func (c *CLI) outputFor(pdfPath string, multiple bool) string {
	name := pdfStem(pdfPath) + "_ocr.zip"
	switch {
	case c.outputPath == "":
		return name
	case multiple || !strings.EqualFold(filepath.Ext(c.outputPath), ".zip"):
		return filepath.Join(c.outputPath, name)
	default:
		return c.outputPath
	}
}

func (c *CLI) reportFor(pdfPath string, multiple bool) string {
	if c.reportPath == "" {
		return ""
	}
	if !multiple {
		return c.reportPath
	}
	dir, base := filepath.Split(c.reportPath)
	return filepath.Join(dir, pdfStem(pdfPath)+"_"+base)
}

func pdfStem(pdfPath string) string {
	base := filepath.Base(pdfPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
