package imaging

import (
	"fmt"
	"image"
	"math"
)

// differentThreshold is the CIE76 distance above which two pixels count as
// visibly different.
const differentThreshold = 2.3

// CompareResult describes how far one level has drifted from another,
// usually from the original image.
type CompareResult struct {
	// SimilarityScore is the share of pixels that are not visibly
	// different (0.0 to 1.0).
	SimilarityScore float64 `json:"similarity_score"`

	PixelsDifferent int `json:"pixels_different"`
	TotalPixels     int `json:"total_pixels"`

	// AverageColorDiff is the mean per-channel absolute difference (0-255).
	AverageColorDiff float64 `json:"average_color_diff"`

	// AverageDeltaE is the mean CIE76 distance in Lab space.
	AverageDeltaE float64 `json:"average_delta_e"`

	// MaxDeltaE is the largest CIE76 distance found.
	MaxDeltaE float64 `json:"max_delta_e"`
}

// Compare measures the pixel-wise difference of two images of equal size.
// Alpha is ignored.
func Compare(a, b *image.NRGBA) (*CompareResult, error) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return nil, fmt.Errorf("size mismatch: %dx%d vs %dx%d", ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy())
	}

	total := ab.Dx() * ab.Dy()
	if total == 0 {
		return nil, fmt.Errorf("cannot compare empty images")
	}

	different := 0
	var sumDiff, sumDeltaE, maxDeltaE float64

	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			c1 := a.NRGBAAt(ab.Min.X+x, ab.Min.Y+y)
			c2 := b.NRGBAAt(bb.Min.X+x, bb.Min.Y+y)
			if c1.R == c2.R && c1.G == c2.G && c1.B == c2.B {
				continue
			}

			sumDiff += float64(absDiff(c1.R, c2.R)+absDiff(c1.G, c2.G)+absDiff(c1.B, c2.B)) / 3.0

			// go-colorful works with L in 0..1; scale to the usual 0..100
			d := toColorful(c1).DistanceCIE76(toColorful(c2)) * 100
			sumDeltaE += d
			if d > maxDeltaE {
				maxDeltaE = d
			}
			if d > differentThreshold {
				different++
			}
		}
	}

	return &CompareResult{
		SimilarityScore:  math.Round((1.0-float64(different)/float64(total))*1000) / 1000,
		PixelsDifferent:  different,
		TotalPixels:      total,
		AverageColorDiff: math.Round(sumDiff/float64(total)*100) / 100,
		AverageDeltaE:    math.Round(sumDeltaE/float64(total)*100) / 100,
		MaxDeltaE:        math.Round(maxDeltaE*100) / 100,
	}, nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
