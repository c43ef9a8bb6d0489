// Package imaging provides the image plumbing around the pixelation engine.
//
// It decodes source files into upright NRGBA buffers, encodes level buffers
// for transport (base64 PNG previews) and for disk (exported files and
// archives), and offers a few read-only inspections of a level: color
// sampling, dominant colors, cropping and a block grid overlay.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. For regions, (x1,y1) is
// inclusive and (x2,y2) is exclusive.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. All other functions only read
// their input images and may be called concurrently, which matters because
// level buffers are shared with the engine workers.
//
// # Resampling
//
// Every resize in this package uses nearest-neighbour sampling. Smoothing
// filters would blur the block edges that make a pixelated level readable.
package imaging
