package pixelate

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"
)

// createGradientImage creates an image where every pixel has a distinct color
func createGradientImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 7), uint8(y * 13), uint8(x ^ y), 255})
		}
	}
	return img
}

func TestPixelate_Dimensions(t *testing.T) {
	src := createGradientImage(37, 23)

	for _, bs := range []int{1, 2, 3, 5, 8, 23, 37, 100} {
		dst := Pixelate(src, bs)
		if dst.Bounds() != src.Bounds() {
			t.Errorf("blockSize %d: bounds got %v, want %v", bs, dst.Bounds(), src.Bounds())
		}
	}
}

func TestPixelate_IdentityAtBlockSizeOne(t *testing.T) {
	src := createGradientImage(31, 17)
	dst := Pixelate(src, 1)

	if !bytes.Equal(dst.Pix, src.Pix) {
		t.Error("Pixelate(src, 1) is not pixel-identical to src")
	}
	if &dst.Pix[0] == &src.Pix[0] {
		t.Error("Pixelate(src, 1) returned the source buffer instead of a copy")
	}
}

func TestPixelate_ZeroBlockSizeTreatedAsOne(t *testing.T) {
	src := createGradientImage(9, 9)
	dst := Pixelate(src, 0)

	if !bytes.Equal(dst.Pix, src.Pix) {
		t.Error("Pixelate(src, 0) should behave like blockSize 1")
	}
}

func TestPixelate_Deterministic(t *testing.T) {
	src := createGradientImage(120, 90)

	for _, bs := range []int{2, 7, 16, 45} {
		a := Pixelate(src, bs)
		b := Pixelate(src, bs)
		if !bytes.Equal(a.Pix, b.Pix) {
			t.Errorf("blockSize %d: two runs produced different pixels", bs)
		}
	}
}

func TestPixelate_SourceUnchanged(t *testing.T) {
	src := createGradientImage(50, 40)
	before := append([]byte(nil), src.Pix...)

	Pixelate(src, 6)

	if !bytes.Equal(before, src.Pix) {
		t.Error("Pixelate mutated its source")
	}
}

func TestPixelate_BlockUniformity(t *testing.T) {
	width, height := 64, 45
	src := createGradientImage(width, height)

	tests := []struct {
		name      string
		blockSize int
	}{
		{"exact multiple width", 8},
		{"clipped both edges", 7},
		{"large blocks", 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := Pixelate(src, tt.blockSize)
			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					sx, sy := SamplePoint(width, height, tt.blockSize, x, y)
					want := src.NRGBAAt(sx, sy)
					got := dst.NRGBAAt(x, y)
					if got != want {
						t.Fatalf("pixel (%d,%d): got %v, want %v sampled at (%d,%d)", x, y, got, want, sx, sy)
					}
				}
			}
		})
	}
}

func TestPixelate_ClippedBlockCenter(t *testing.T) {
	// 10 wide with blocks of 4: column blocks are [0,4) [4,8) [8,10)
	src := createGradientImage(10, 4)
	dst := Pixelate(src, 4)

	// Last block spans columns 8..9, its center column is 8 + 2/2 = 9
	want := src.NRGBAAt(9, 2)
	for x := 8; x < 10; x++ {
		for y := 0; y < 4; y++ {
			if got := dst.NRGBAAt(x, y); got != want {
				t.Errorf("pixel (%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}

	// First block samples (2,2)
	if got, want := dst.NRGBAAt(0, 0), src.NRGBAAt(2, 2); got != want {
		t.Errorf("first block: got %v, want %v", got, want)
	}
}

func TestPixelate_BlockLargerThanImage(t *testing.T) {
	src := createGradientImage(12, 6)
	want := src.NRGBAAt(6, 3)

	for _, blockSize := range []int{12, 50, math.MaxInt - 1, math.MaxInt} {
		dst := Pixelate(src, blockSize)
		for y := 0; y < 6; y++ {
			for x := 0; x < 12; x++ {
				if got := dst.NRGBAAt(x, y); got != want {
					t.Fatalf("blockSize %d, pixel (%d,%d): got %v, want single color %v", blockSize, x, y, got, want)
				}
			}
		}
	}
}

func TestPixelate_NonZeroOrigin(t *testing.T) {
	full := createGradientImage(40, 40)
	sub := full.SubImage(image.Rect(10, 10, 30, 26)).(*image.NRGBA)

	dst := Pixelate(sub, 5)

	if dst.Bounds() != sub.Bounds() {
		t.Fatalf("bounds: got %v, want %v", dst.Bounds(), sub.Bounds())
	}

	// First block of the sub-image spans (10..14, 10..14), sampled at (12,12)
	if got, want := dst.NRGBAAt(10, 10), full.NRGBAAt(12, 12); got != want {
		t.Errorf("origin block: got %v, want %v", got, want)
	}
	// Bottom row of blocks is a single clipped row [25,26)
	if got, want := dst.NRGBAAt(29, 25), full.NRGBAAt(27, 25); got != want {
		t.Errorf("last block: got %v, want %v", got, want)
	}
}

func TestSamplePoint(t *testing.T) {
	tests := []struct {
		name              string
		width, height, bs int
		x, y              int
		wantX, wantY      int
	}{
		{"first block", 100, 100, 10, 3, 4, 5, 5},
		{"interior block", 100, 100, 10, 47, 61, 45, 65},
		{"clipped column", 25, 100, 10, 22, 0, 22, 5},
		{"single pixel blocks", 5, 5, 1, 3, 2, 3, 2},
		{"whole image block", 9, 7, 20, 8, 6, 4, 3},
		{"max int block", 9, 7, math.MaxInt, 8, 6, 4, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotX, gotY := SamplePoint(tt.width, tt.height, tt.bs, tt.x, tt.y)
			if gotX != tt.wantX || gotY != tt.wantY {
				t.Errorf("SamplePoint: got (%d,%d), want (%d,%d)", gotX, gotY, tt.wantX, tt.wantY)
			}
		})
	}
}

func BenchmarkPixelate(b *testing.B) {
	src := createGradientImage(1024, 768)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Pixelate(src, 16)
	}
}
