package ocr

import (
	"fmt"
	"os/exec"

	"github.com/dms1981/python-ocr/internal/ocr/engine"
)

// lookPath is the exec.LookPath implementation used by Available.
// Tests may replace it to simulate a missing Tesseract install.
var lookPath = exec.LookPath

func NewEngine(engineType, language string) (Engine, error) {
	var e Engine
	var err error

	switch engineType {
	case "tesseract":
		e = engine.NewTesseractEngine(language)
	case "gosseract", "":
		e, err = engine.NewGosseractEngine(language)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown engine type: %s", engineType)
	}

	return e, nil
}

// Available reports whether the tesseract binary is on PATH. The cgo
// engine links libtesseract directly, but a missing binary almost always
// means a missing install, so this is the preflight check for both.
func Available() bool {
	_, err := lookPath("tesseract")
	return err == nil
}

func InstallHint() string {
	return "install Tesseract: https://github.com/tesseract-ocr/tesseract"
}
