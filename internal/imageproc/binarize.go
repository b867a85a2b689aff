package imageproc

import (
	"image"
	"image/color"
)

// Binarize converts a grayscale page to pure black and white using Otsu's
// threshold. Tesseract binarizes internally anyway, but doing it here with
// a per-page threshold evens out scans with uneven exposure.
func Binarize(src *image.NRGBA) *image.Gray {
	hist, total := histogram(src)
	threshold := otsuThreshold(hist, total)

	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			// After imaging.Grayscale all channels are equal.
			v := src.NRGBAAt(x, y).R
			out := uint8(255)
			if v <= threshold {
				out = 0
			}
			dst.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: out})
		}
	}

	return dst
}

func histogram(src *image.NRGBA) ([256]int, int) {
	var hist [256]int
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[src.NRGBAAt(x, y).R]++
		}
	}
	return hist, b.Dx() * b.Dy()
}

// otsuThreshold picks the gray level that maximizes between-class variance.
func otsuThreshold(hist [256]int, total int) uint8 {
	if total == 0 {
		return 127
	}

	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var sumBack, weightBack float64
	var bestVariance float64
	var best uint8

	for t := 0; t < 256; t++ {
		weightBack += float64(hist[t])
		if weightBack == 0 {
			continue
		}
		weightFore := float64(total) - weightBack
		if weightFore == 0 {
			break
		}

		sumBack += float64(t) * float64(hist[t])
		meanBack := sumBack / weightBack
		meanFore := (sum - sumBack) / weightFore

		variance := weightBack * weightFore * (meanBack - meanFore) * (meanBack - meanFore)
		if variance > bestVariance {
			bestVariance = variance
			best = uint8(t)
		}
	}

	return best
}
