package imaging

import (
	"image/color"
	"testing"
)

func TestGridOverlay(t *testing.T) {
	img := createInMemoryImage(100, 60, color.NRGBA{0, 0, 0, 255})

	result, err := GridOverlay(img, 25, "#FF0000FF")
	if err != nil {
		t.Fatalf("GridOverlay failed: %v", err)
	}

	if result.Width != 100 || result.Height != 60 {
		t.Errorf("dimensions: got %dx%d, want 100x60", result.Width, result.Height)
	}
	if result.BlockSize != 25 {
		t.Errorf("BlockSize: got %d, want 25", result.BlockSize)
	}

	decoded := decodeEncoded(t, result.EncodedImage)

	tests := []struct {
		name    string
		x, y    int
		wantRed bool
	}{
		{"vertical line", 25, 10, true},
		{"horizontal line", 10, 50, true},
		{"crossing", 75, 25, true},
		{"block interior", 12, 12, false},
		{"left edge is not a line", 0, 10, false},
		{"top edge is not a line", 10, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, _ := decoded.At(tt.x, tt.y).RGBA()
			isRed := r>>8 == 255 && g>>8 == 0 && b>>8 == 0
			isBlack := r == 0 && g == 0 && b == 0
			if tt.wantRed && !isRed {
				t.Errorf("(%d,%d): got (%d,%d,%d), want red", tt.x, tt.y, r>>8, g>>8, b>>8)
			}
			if !tt.wantRed && !isBlack {
				t.Errorf("(%d,%d): got (%d,%d,%d), want black", tt.x, tt.y, r>>8, g>>8, b>>8)
			}
		})
	}
}

func TestGridOverlay_Blending(t *testing.T) {
	img := createInMemoryImage(20, 20, color.NRGBA{0, 0, 0, 255})

	// Invalid color falls back to half-transparent red
	result, err := GridOverlay(img, 10, "invalid")
	if err != nil {
		t.Fatalf("GridOverlay failed: %v", err)
	}

	decoded := decodeEncoded(t, result.EncodedImage)
	r, g, _, a := decoded.At(10, 5).RGBA()
	if r>>8 != 128 || g != 0 || a>>8 != 255 {
		t.Errorf("blended pixel: got r=%d g=%d a=%d, want r=128 g=0 a=255", r>>8, g>>8, a>>8)
	}
}

func TestGridOverlay_SmallBlocksDrawNothing(t *testing.T) {
	img := createInMemoryImage(10, 10, color.NRGBA{0, 0, 255, 255})

	result, err := GridOverlay(img, 1, "#FF0000")
	if err != nil {
		t.Fatalf("GridOverlay failed: %v", err)
	}

	decoded := decodeEncoded(t, result.EncodedImage)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			r, _, b, _ := decoded.At(x, y).RGBA()
			if r != 0 || b>>8 != 255 {
				t.Fatalf("pixel (%d,%d) changed", x, y)
			}
		}
	}
}

func TestGridOverlay_DoesNotModifySource(t *testing.T) {
	img := createInMemoryImage(30, 30, color.NRGBA{0, 0, 0, 255})

	if _, err := GridOverlay(img, 10, "#00FF00"); err != nil {
		t.Fatalf("GridOverlay failed: %v", err)
	}
	if c := img.NRGBAAt(10, 10); c != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("source pixel changed to %v", c)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input   string
		want    color.NRGBA
		wantErr bool
	}{
		{"#FF0000", color.NRGBA{255, 0, 0, 255}, false},
		{"00FF00", color.NRGBA{0, 255, 0, 255}, false},
		{"#0000FF80", color.NRGBA{0, 0, 255, 128}, false},
		{"", color.NRGBA{}, true},
		{"#FFF", color.NRGBA{}, true},
		{"#GGGGGG", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseHexColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
