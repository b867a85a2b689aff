package imageproc

import (
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPage builds a white page with black text-like bars drawn at the given
// slope (tangent of the skew angle).
func newPage(w, h int, slope float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	black := color.NRGBA{A: 255}
	for _, base := range []int{80, 160, 240, 320} {
		for x := 20; x < w-20; x++ {
			y := base + int(slope*float64(x))
			for t := 0; t < 3; t++ {
				if y+t >= 0 && y+t < h {
					img.SetNRGBA(x, y+t, black)
				}
			}
		}
	}
	return img
}

func TestDetectSkewStraightPage(t *testing.T) {
	page := newPage(400, 400, 0)

	angle := DetectSkew(page)

	assert.InDelta(t, 0, angle, 0.4)
}

func TestDetectSkewTiltedPage(t *testing.T) {
	const degrees = 3.0
	page := newPage(400, 400, math.Tan(degrees*math.Pi/180))

	angle := DetectSkew(page)

	assert.InDelta(t, degrees, angle, 0.75)
}

func TestDetectSkewBlankPage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 200, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	assert.Zero(t, DetectSkew(img))
}

func TestBinarize(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 100; x++ {
			v := uint8(200)
			if x < 50 {
				v = 50
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}

	out := Binarize(img)

	assert.Equal(t, uint8(0), out.GrayAt(10, 10).Y)
	assert.Equal(t, uint8(255), out.GrayAt(90, 10).Y)
	for y := 0; y < 50; y += 7 {
		for x := 0; x < 100; x += 7 {
			v := out.GrayAt(x, y).Y
			assert.True(t, v == 0 || v == 255, "pixel (%d,%d) = %d", x, y, v)
		}
	}
}

func TestProcessorProcess(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "page_1.png")
	require.NoError(t, imaging.Save(newPage(500, 400, 0), src))

	p := NewProcessor()
	processed, err := p.Process(src)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "page_1_processed.png"), processed)
	assert.True(t, IsProcessed(filepath.Base(processed)))

	img, err := imaging.Open(processed)
	require.NoError(t, err)
	assert.Equal(t, 500, img.Bounds().Dx())

	require.NoError(t, p.Cleanup(processed))
	_, err = os.Stat(processed)
	assert.True(t, os.IsNotExist(err))
}

func TestProcessorUpscalesSmallPages(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "thumb.png")
	small := imaging.New(120, 90, color.White)
	require.NoError(t, imaging.Save(small, src))

	p := NewProcessor()
	processed, err := p.Process(src)
	require.NoError(t, err)
	defer p.Cleanup(processed)

	img, err := imaging.Open(processed)
	require.NoError(t, err)
	assert.Equal(t, 240, img.Bounds().Dx())
	assert.Equal(t, 180, img.Bounds().Dy())
}

func TestProcessorMissingFile(t *testing.T) {
	p := NewProcessor()
	_, err := p.Process(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}
