package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/disintegration/imaging"
)

// GridOverlayResult contains a level with its block grid drawn on top.
type GridOverlayResult struct {
	EncodedImage
	BlockSize int `json:"block_size"`
}

// GridOverlay draws the block boundaries of a pixelated level onto a copy
// of img. Lines are drawn on the first row and column of every block after
// the first, so each line marks where a new sampled color starts.
//
// gridColorHex accepts "#RRGGBB" or "#RRGGBBAA"; an invalid value falls back
// to semi-transparent red. A blockSize below 2 draws nothing, since every
// pixel would be a line.
func GridOverlay(img image.Image, blockSize int, gridColorHex string) (*GridOverlayResult, error) {
	gridColor, err := parseHexColor(gridColorHex)
	if err != nil {
		gridColor = color.NRGBA{255, 0, 0, 128}
	}

	result := imaging.Clone(img)
	bounds := result.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if blockSize >= 2 {
		for x := blockSize; x < width; x += blockSize {
			for y := 0; y < height; y++ {
				blendPixel(result, x, y, gridColor)
			}
		}
		for y := blockSize; y < height; y += blockSize {
			for x := 0; x < width; x++ {
				if x%blockSize != 0 {
					blendPixel(result, x, y, gridColor)
				}
			}
		}
	}

	enc, err := EncodePNG(result)
	if err != nil {
		return nil, err
	}

	return &GridOverlayResult{EncodedImage: *enc, BlockSize: blockSize}, nil
}

// blendPixel mixes c over the pixel at (x, y) using c's alpha as weight. The
// destination alpha is kept.
func blendPixel(img *image.NRGBA, x, y int, c color.NRGBA) {
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+3 : i+3]
	a := uint32(c.A)
	p[0] = uint8((uint32(c.R)*a + uint32(p[0])*(255-a)) / 255)
	p[1] = uint8((uint32(c.G)*a + uint32(p[1])*(255-a)) / 255)
	p[2] = uint8((uint32(c.B)*a + uint32(p[2])*(255-a)) / 255)
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080".
func parseHexColor(hex string) (color.NRGBA, error) {
	if len(hex) == 0 {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.NRGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}
