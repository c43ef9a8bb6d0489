package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGBAColor represents a non-premultiplied RGBA color with 8-bit components.
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"` // 0 = fully transparent, 255 = fully opaque
}

// HSLColor represents a color in HSL space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-359 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorResult contains a color value in multiple representations.
type ColorResult struct {
	Hex  string    `json:"hex"` // "#rrggbb", alpha excluded
	RGB  RGBColor  `json:"rgb"`
	RGBA RGBAColor `json:"rgba"`
	HSL  HSLColor  `json:"hsl"`
}

// NewColorResult describes a non-premultiplied color.
func NewColorResult(c color.NRGBA) ColorResult {
	cf := toColorful(c)
	h, s, l := cf.Hsl()

	return ColorResult{
		Hex:  cf.Hex(),
		RGB:  RGBColor{R: c.R, G: c.G, B: c.B},
		RGBA: RGBAColor{R: c.R, G: c.G, B: c.B, A: c.A},
		HSL: HSLColor{
			H: int(math.Round(h)) % 360,
			S: int(math.Round(s * 100)),
			L: int(math.Round(l * 100)),
		},
	}
}

// toColorful converts the color channels of c, ignoring alpha.
func toColorful(c color.NRGBA) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// SampleColor returns the color at (x, y).
//
// Coordinates are 0-based relative to the image bounds' minimum point, so a
// level buffer and its source can be sampled with the same coordinates.
func SampleColor(img *image.NRGBA, x, y int) (*ColorResult, error) {
	bounds := img.Bounds()
	px, py := bounds.Min.X+x, bounds.Min.Y+y
	if x < 0 || y < 0 || px >= bounds.Max.X || py >= bounds.Max.Y {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds %dx%d", x, y, bounds.Dx(), bounds.Dy())
	}

	res := NewColorResult(img.NRGBAAt(px, py))
	return &res, nil
}

// Region represents a rectangular region within an image.
// (X1, Y1) is inclusive, (X2, Y2) is exclusive.
type Region struct {
	X1 int
	Y1 int
	X2 int
	Y2 int
}

// ColorFrequency represents a color and its occurrence frequency in an image.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#rrggbb" (quantized)
	Percentage float64  `json:"percentage"` // Share of pixels with this color (0-100)
	RGB        RGBColor `json:"rgb"`        // RGB components (quantized)
}

// DominantColorsResult contains the most frequent colors of an image.
type DominantColorsResult struct {
	// Colors are sorted by frequency in descending order.
	Colors []ColorFrequency `json:"colors"`

	// Distinct is the number of different quantized colors found.
	Distinct int `json:"distinct"`
}

// DominantColors extracts the count most common colors of img or of a
// region of it.
//
// Colors are grouped by quantizing each channel to a multiple of 16 unless
// exact is set; a pixelated level has few distinct colors, so its exact
// palette is usually small enough to report as is. Ties are broken by hex
// value so the result is deterministic.
func DominantColors(img *image.NRGBA, count int, region *Region, exact bool) (*DominantColorsResult, error) {
	bounds := img.Bounds()
	if region != nil {
		r := image.Rect(region.X1, region.Y1, region.X2, region.Y2).Add(bounds.Min)
		if !r.In(bounds) || r.Empty() {
			return nil, fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds %dx%d",
				region.X1, region.Y1, region.X2, region.Y2, bounds.Dx(), bounds.Dy())
		}
		bounds = r
	}
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}

	counts := make(map[color.NRGBA]int)
	total := 0

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			key := color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
			if !exact {
				key.R, key.G, key.B = c.R/16*16, c.G/16*16, c.B/16*16
			}
			counts[key]++
			total++
		}
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for c, n := range counts {
		colors = append(colors, ColorFrequency{
			Hex:        toColorful(c).Hex(),
			Percentage: float64(n) / float64(total) * 100,
			RGB:        RGBColor{R: c.R, G: c.G, B: c.B},
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	distinct := len(colors)
	if len(colors) > count {
		colors = colors[:count]
	}

	return &DominantColorsResult{Colors: colors, Distinct: distinct}, nil
}
