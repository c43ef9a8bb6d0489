package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// CropResult contains a cropped region of a level encoded as base64 PNG.
type CropResult struct {
	EncodedImage
	Scale float64 `json:"scale"`
}

// Crop extracts the rectangle (x1,y1)-(x2,y2) of img and optionally scales
// it. Scaling uses nearest-neighbour sampling so that enlarged blocks stay
// sharp; a scale of 0 or 1 keeps the original size.
func Crop(img image.Image, x1, y1, x2, y2 int, scale float64) (*CropResult, error) {
	bounds := img.Bounds()

	if x1 < bounds.Min.X || y1 < bounds.Min.Y || x2 > bounds.Max.X || y2 > bounds.Max.Y {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			x1, y1, x2, y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}
	if scale < 0 {
		return nil, fmt.Errorf("invalid scale %v: must not be negative", scale)
	}
	if scale == 0 {
		scale = 1.0
	}

	cropped := imaging.Crop(img, image.Rect(x1, y1, x2, y2))

	if scale != 1.0 {
		newWidth := max(1, int(float64(cropped.Bounds().Dx())*scale))
		newHeight := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.NearestNeighbor)
	}

	enc, err := EncodePNG(cropped)
	if err != nil {
		return nil, err
	}

	return &CropResult{EncodedImage: *enc, Scale: scale}, nil
}
