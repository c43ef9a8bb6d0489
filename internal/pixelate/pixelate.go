// Package pixelate renders mosaic ("pixel-art") versions of an image.
//
// The image is partitioned into square blocks starting at the top-left
// corner. Every block is filled with the single color found at its center
// pixel. Blocks on the right and bottom edges are clipped to the image bounds
// and are sampled at the center of the clipped rectangle.
//
// # Thread Safety
//
// Pixelate never mutates its source and keeps no state, so it may be called
// concurrently on the same source image.
package pixelate

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"
)

// bytesPerPixel is the NRGBA stride of a single pixel.
const bytesPerPixel = 4

// Pixelate returns a new image with the same bounds as src in which every
// blockSize × blockSize block holds the color of its center pixel.
//
// Parameters:
//   - src: Source image. Must have positive width and height.
//   - blockSize: Side length of a block in pixels. Values below 1 are treated
//     as 1, which makes the result a pixel-identical copy of src.
//
// For a block spanning rows [r0, r1) and columns [c0, c1) the sample point is
// (c0 + (c1-c0)/2, r0 + (r1-r0)/2) using integer division.
//
// Block rows are distributed over the available CPUs. Each band writes a
// disjoint range of destination rows, so the output does not depend on the
// scheduling.
func Pixelate(src *image.NRGBA, blockSize int) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)

	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return dst
	}
	if blockSize < 1 {
		blockSize = 1
	}
	// Any larger block is the whole image.
	blockSize = min(blockSize, max(width, height))

	blockRows := (height + blockSize - 1) / blockSize

	parallel.Line(blockRows, func(start, end int) {
		for br := start; br < end; br++ {
			r0 := br * blockSize
			r1 := min(r0+blockSize, height)
			sampleY := bounds.Min.Y + r0 + (r1-r0)/2

			for c0 := 0; c0 < width; c0 += blockSize {
				c1 := min(c0+blockSize, width)
				sampleX := bounds.Min.X + c0 + (c1-c0)/2

				si := src.PixOffset(sampleX, sampleY)
				var px [bytesPerPixel]byte
				copy(px[:], src.Pix[si:si+bytesPerPixel])

				fillBlock(dst, bounds.Min.X+c0, bounds.Min.Y+r0, c1-c0, r1-r0, px)
			}
		}
	})

	return dst
}

// fillBlock writes px into the w × h rectangle of dst whose top-left corner
// is (x, y).
func fillBlock(dst *image.NRGBA, x, y, w, h int, px [bytesPerPixel]byte) {
	for row := 0; row < h; row++ {
		di := dst.PixOffset(x, y+row)
		line := dst.Pix[di : di+w*bytesPerPixel]
		for i := 0; i < len(line); i += bytesPerPixel {
			copy(line[i:i+bytesPerPixel], px[:])
		}
	}
}

// SamplePoint returns the source coordinate whose color fills the block that
// contains (x, y). Coordinates are relative to the image origin.
func SamplePoint(width, height, blockSize, x, y int) (int, int) {
	if blockSize < 1 {
		blockSize = 1
	}
	if side := max(width, height); side > 0 {
		blockSize = min(blockSize, side)
	}
	c0 := (x / blockSize) * blockSize
	r0 := (y / blockSize) * blockSize
	c1 := min(c0+blockSize, width)
	r1 := min(r0+blockSize, height)
	return c0 + (c1-c0)/2, r0 + (r1-r0)/2
}
