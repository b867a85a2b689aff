package imageproc

import (
	"image"
	"math"
)

const (
	maxSkewDegrees  = 5.0
	coarseStep      = 0.5
	fineStep        = 0.1
	maxSamplePoints = 40000
)

type point struct {
	x, y int
}

// DetectSkew estimates the rotation of text lines on a grayscale page and
// returns the correction angle in degrees for imaging.Rotate. It scores
// candidate angles by sheared horizontal projection: the right angle
// collapses each text line into a few histogram rows, giving a peaky
// profile. This replaces a contour-based minimum-area-rectangle fit without
// needing full image moments.
func DetectSkew(src *image.NRGBA) float64 {
	pts := darkPixels(src)
	if len(pts) < 100 {
		return 0
	}

	height := src.Bounds().Dy()

	best := searchAngle(pts, height, -maxSkewDegrees, maxSkewDegrees, coarseStep)
	best = searchAngle(pts, height, best-coarseStep, best+coarseStep, fineStep)

	if math.Abs(best) > maxSkewDegrees {
		return 0
	}
	return best
}

func darkPixels(src *image.NRGBA) []point {
	hist, total := histogram(src)
	threshold := otsuThreshold(hist, total)

	b := src.Bounds()
	stride := 1
	if total > maxSamplePoints {
		stride = int(math.Sqrt(float64(total) / float64(maxSamplePoints)))
		if stride < 1 {
			stride = 1
		}
	}

	var pts []point
	for y := b.Min.Y; y < b.Max.Y; y += stride {
		for x := b.Min.X; x < b.Max.X; x += stride {
			if src.NRGBAAt(x, y).R <= threshold {
				pts = append(pts, point{x - b.Min.X, y - b.Min.Y})
			}
		}
	}
	return pts
}

func searchAngle(pts []point, height int, from, to, step float64) float64 {
	bestAngle := 0.0
	bestScore := -1.0
	for angle := from; angle <= to+step/2; angle += step {
		if s := projectionScore(pts, height, angle); s > bestScore {
			bestScore = s
			bestAngle = angle
		}
	}
	return bestAngle
}

// projectionScore shears dark pixels by tan(angle) and sums squared bin
// counts. Peaked profiles (aligned text lines) score higher than smeared
// ones.
func projectionScore(pts []point, height int, angle float64) float64 {
	tan := math.Tan(angle * math.Pi / 180)

	// Sheared rows can land outside [0,height); pad both sides.
	margin := int(math.Abs(tan)*float64(height)) + 1
	bins := make([]int, height+2*margin)

	for _, p := range pts {
		row := p.y - int(tan*float64(p.x)) + margin
		if row >= 0 && row < len(bins) {
			bins[row]++
		}
	}

	var score float64
	for _, c := range bins {
		score += float64(c) * float64(c)
	}
	return score
}
