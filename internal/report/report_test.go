package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestWriter_AppendsRows(t *testing.T) {
	// Arrange
	tempDir := t.TempDir()
	outputPath := filepath.Join(tempDir, "run_report.csv")
	writer := NewWriter(outputPath)

	row1 := Row{File: "scan.pdf", Page: 1, Characters: 120, Words: 20, Duration: 1500 * time.Millisecond}
	row2 := Row{File: "scan.pdf", Page: 2, Error: "tesseract: exit status 1"}

	expectedRecords := 3 // header + 2 rows

	// Act
	err1 := writer.Append(row1)
	err2 := writer.Append(row2)
	closeErr := writer.Close()

	// Assert
	if err1 != nil {
		t.Fatalf("first append failed: %v", err1)
	}
	if err2 != nil {
		t.Fatalf("second append failed: %v", err2)
	}
	if closeErr != nil {
		t.Fatalf("close failed: %v", closeErr)
	}

	records := readCSVFile(t, outputPath)
	if len(records) != expectedRecords {
		t.Fatalf("expected %d records, got %d", expectedRecords, len(records))
	}

	if !stringSlicesEqual(records[0], Header()) {
		t.Errorf("expected header %v, got %v", Header(), records[0])
	}
	if records[1][1] != "1" || records[1][4] != "1500" {
		t.Errorf("first row mismatch: %v", records[1])
	}
	if records[2][5] != "tesseract: exit status 1" {
		t.Errorf("expected error column, got %v", records[2])
	}
}

func TestWriter_ConcurrentAppends(t *testing.T) {
	// Arrange
	outputPath := filepath.Join(t.TempDir(), "concurrent.csv")
	writer := NewWriter(outputPath)

	numGoroutines := 5
	expectedRecords := 1 + numGoroutines // header + rows
	var wg sync.WaitGroup

	// Act
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			row := Row{
				File:       "scan.pdf",
				Page:       id + 1,
				Characters: 10 * id,
				Words:      id,
			}
			if err := writer.Append(row); err != nil {
				t.Errorf("goroutine %d failed: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	if err := writer.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	// Assert
	records := readCSVFile(t, outputPath)
	if len(records) != expectedRecords {
		t.Errorf("expected %d records, got %d", expectedRecords, len(records))
	}
}

func TestWriter_EmptyAppend(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.csv")
	writer := NewWriter(outputPath)

	if err := writer.Append(); err != nil {
		t.Fatalf("empty append failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	// No rows means the report file is never created.
	if _, err := os.Stat(outputPath); !os.IsNotExist(err) {
		t.Errorf("expected no report file, stat err: %v", err)
	}
}

func TestWriter_InvalidPath(t *testing.T) {
	writer := NewWriter("/proc/invalid/path/report.csv")
	defer writer.Close()

	if err := writer.Append(Row{File: "x.pdf", Page: 1}); err == nil {
		t.Errorf("expected error for invalid path, got none")
	}
}

// Helper functions
func readCSVFile(t *testing.T, path string) [][]string {
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("failed to read CSV: %v", err)
	}
	return records
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}
