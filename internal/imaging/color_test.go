package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// createInMemoryImage creates a solid color NRGBA image
func createInMemoryImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// createPatternImage creates an image with different colors in each quadrant
func createPatternImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.NRGBA
			if x < width/2 && y < height/2 {
				c = color.NRGBA{255, 0, 0, 255} // Red top-left
			} else if x >= width/2 && y < height/2 {
				c = color.NRGBA{0, 255, 0, 255} // Green top-right
			} else if x < width/2 && y >= height/2 {
				c = color.NRGBA{0, 0, 255, 255} // Blue bottom-left
			} else {
				c = color.NRGBA{255, 255, 255, 255} // White bottom-right
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestSampleColor(t *testing.T) {
	img := createPatternImage(100, 100)

	tests := []struct {
		name    string
		x, y    int
		wantHex string
		wantRGB RGBColor
	}{
		{"red quadrant", 10, 10, "#ff0000", RGBColor{255, 0, 0}},
		{"green quadrant", 90, 10, "#00ff00", RGBColor{0, 255, 0}},
		{"blue quadrant", 10, 90, "#0000ff", RGBColor{0, 0, 255}},
		{"white quadrant", 90, 90, "#ffffff", RGBColor{255, 255, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := SampleColor(img, tt.x, tt.y)
			if err != nil {
				t.Fatalf("SampleColor failed: %v", err)
			}
			if result.Hex != tt.wantHex {
				t.Errorf("Hex: got %s, want %s", result.Hex, tt.wantHex)
			}
			if result.RGB != tt.wantRGB {
				t.Errorf("RGB: got %v, want %v", result.RGB, tt.wantRGB)
			}
			if result.RGBA.A != 255 {
				t.Errorf("Alpha: got %d, want 255", result.RGBA.A)
			}
		})
	}
}

func TestSampleColor_OutOfBounds(t *testing.T) {
	img := createInMemoryImage(10, 10, color.NRGBA{0, 0, 0, 255})

	points := [][2]int{{-1, 0}, {0, -1}, {10, 0}, {0, 10}, {100, 100}}
	for _, p := range points {
		if _, err := SampleColor(img, p[0], p[1]); err == nil {
			t.Errorf("SampleColor(%d,%d) should fail", p[0], p[1])
		}
	}
}

func TestSampleColor_RelativeToBounds(t *testing.T) {
	full := createPatternImage(40, 40)
	sub := full.SubImage(image.Rect(20, 20, 40, 40)).(*image.NRGBA)

	result, err := SampleColor(sub, 0, 0)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}
	if result.Hex != "#ffffff" {
		t.Errorf("Hex: got %s, want #ffffff", result.Hex)
	}
}

func TestNewColorResult_HSL(t *testing.T) {
	tests := []struct {
		name string
		c    color.NRGBA
		want HSLColor
	}{
		{"red", color.NRGBA{255, 0, 0, 255}, HSLColor{0, 100, 50}},
		{"green", color.NRGBA{0, 255, 0, 255}, HSLColor{120, 100, 50}},
		{"blue", color.NRGBA{0, 0, 255, 255}, HSLColor{240, 100, 50}},
		{"white", color.NRGBA{255, 255, 255, 255}, HSLColor{0, 0, 100}},
		{"black", color.NRGBA{0, 0, 0, 255}, HSLColor{0, 0, 0}},
		{"gray", color.NRGBA{128, 128, 128, 255}, HSLColor{0, 0, 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewColorResult(tt.c).HSL
			if got != tt.want {
				t.Errorf("HSL: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewColorResult_Transparent(t *testing.T) {
	res := NewColorResult(color.NRGBA{10, 20, 30, 0})
	if res.Hex != "#0a141e" {
		t.Errorf("Hex: got %s, want #0a141e", res.Hex)
	}
	if res.RGBA.A != 0 {
		t.Errorf("Alpha: got %d, want 0", res.RGBA.A)
	}
}

func TestDominantColors(t *testing.T) {
	img := createPatternImage(100, 100)

	result, err := DominantColors(img, 10, nil, false)
	if err != nil {
		t.Fatalf("DominantColors failed: %v", err)
	}

	if result.Distinct != 4 {
		t.Errorf("Distinct: got %d, want 4", result.Distinct)
	}
	if len(result.Colors) != 4 {
		t.Fatalf("Colors: got %d, want 4", len(result.Colors))
	}
	for _, c := range result.Colors {
		if c.Percentage != 25 {
			t.Errorf("%s: got %.2f%%, want 25%%", c.Hex, c.Percentage)
		}
	}
	// Equal shares are ordered by hex
	if result.Colors[0].Hex != "#0000f0" {
		t.Errorf("first color: got %s, want #0000f0", result.Colors[0].Hex)
	}
}

func TestDominantColors_Exact(t *testing.T) {
	img := createInMemoryImage(10, 10, color.NRGBA{255, 255, 255, 255})
	img.SetNRGBA(0, 0, color.NRGBA{250, 250, 250, 255})

	quantized, err := DominantColors(img, 5, nil, false)
	if err != nil {
		t.Fatalf("DominantColors failed: %v", err)
	}
	if quantized.Distinct != 1 {
		t.Errorf("quantized Distinct: got %d, want 1", quantized.Distinct)
	}

	exact, err := DominantColors(img, 5, nil, true)
	if err != nil {
		t.Fatalf("DominantColors failed: %v", err)
	}
	if exact.Distinct != 2 {
		t.Errorf("exact Distinct: got %d, want 2", exact.Distinct)
	}
	if exact.Colors[0].Hex != "#ffffff" || math.Abs(exact.Colors[0].Percentage-99) > 1e-9 {
		t.Errorf("top color: got %s %.1f%%, want #ffffff 99%%", exact.Colors[0].Hex, exact.Colors[0].Percentage)
	}
}

func TestDominantColors_Region(t *testing.T) {
	img := createPatternImage(100, 100)

	result, err := DominantColors(img, 3, &Region{X1: 0, Y1: 0, X2: 50, Y2: 50}, true)
	if err != nil {
		t.Fatalf("DominantColors failed: %v", err)
	}
	if len(result.Colors) != 1 || result.Colors[0].Hex != "#ff0000" {
		t.Errorf("region colors: got %+v, want only red", result.Colors)
	}
}

func TestDominantColors_CountLimit(t *testing.T) {
	img := createPatternImage(100, 100)

	result, err := DominantColors(img, 2, nil, true)
	if err != nil {
		t.Fatalf("DominantColors failed: %v", err)
	}
	if len(result.Colors) != 2 || result.Distinct != 4 {
		t.Errorf("got %d colors of %d distinct, want 2 of 4", len(result.Colors), result.Distinct)
	}
}

func TestDominantColors_InvalidArgs(t *testing.T) {
	img := createPatternImage(20, 20)

	if _, err := DominantColors(img, 0, nil, false); err == nil {
		t.Error("count 0 should fail")
	}
	if _, err := DominantColors(img, 3, &Region{X1: 0, Y1: 0, X2: 30, Y2: 10}, false); err == nil {
		t.Error("region outside bounds should fail")
	}
	if _, err := DominantColors(img, 3, &Region{X1: 5, Y1: 5, X2: 5, Y2: 10}, false); err == nil {
		t.Error("empty region should fail")
	}
}
