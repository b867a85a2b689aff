package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FindPDFs resolves the CLI input path into the list of PDFs to process.
// A file must be a PDF; a directory contributes every PDF directly inside
// it (no recursion, matching how /data is mounted).
func FindPDFs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading input %s: %w", path, err)
	}

	if !info.IsDir() {
		if !isPDFFile(info.Name()) {
			return nil, fmt.Errorf("input %s is not a PDF", path)
		}
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", path, err)
	}

	var pdfs []string
	for _, entry := range entries {
		if entry.IsDir() || !isPDFFile(entry.Name()) {
			continue
		}
		pdfs = append(pdfs, filepath.Join(path, entry.Name()))
	}

	if len(pdfs) == 0 {
		return nil, fmt.Errorf("no PDF files found in %s", path)
	}
	return pdfs, nil
}

func isPDFFile(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}
