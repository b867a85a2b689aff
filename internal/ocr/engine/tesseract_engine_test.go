package engine

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTesseract writes an executable standing in for the tesseract binary.
func fakeTesseract(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake not available on windows")
	}
	path := filepath.Join(t.TempDir(), "tesseract")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestTesseractEngineProcessImage(t *testing.T) {
	e := &TesseractEngine{
		binary:   fakeTesseract(t, "echo '  recognized text  '"),
		language: "eng",
	}

	out, err := e.ProcessImage(context.Background(), "page-1.png")
	require.NoError(t, err)
	assert.Equal(t, "recognized text", out)
}

func TestTesseractEngineFailure(t *testing.T) {
	e := &TesseractEngine{
		binary: fakeTesseract(t, "echo 'Error: bad image' >&2; exit 1"),
	}

	_, err := e.ProcessImage(context.Background(), "page-1.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad image")
}

func TestTesseractEngineCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := &TesseractEngine{binary: fakeTesseract(t, "echo hi")}
	_, err := e.ProcessImage(ctx, "page-1.png")
	assert.Error(t, err)
}

func TestNewTesseractEngineDefaultsBinary(t *testing.T) {
	e := NewTesseractEngine("eng")
	assert.NotEmpty(t, e.binary)
}
