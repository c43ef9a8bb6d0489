package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// LoadedImage is a decoded source image ready to be pixelated.
type LoadedImage struct {
	// Image holds the upright pixels with the origin at (0,0).
	Image *image.NRGBA

	// Info describes the file the image was decoded from.
	Info ImageInfo
}

// ImageCache provides thread-safe caching of decoded source images.
//
// Decoding a large photo and applying its EXIF orientation is far more
// expensive than setting up a pixelation session, so images are kept by
// path. Reloading the same path for a new session reuses the decoded
// buffer; engines never modify their source, so sharing it is safe.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or
// Clear().
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*LoadedImage
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*LoadedImage),
	}
}

// Load retrieves an image from the cache or decodes it from disk.
//
// Supported formats are PNG, JPEG, GIF, BMP and WebP. JPEG files carrying an
// EXIF orientation tag are rotated or flipped so the result is upright.
//
// The image is cached using the exact path string provided. Different paths
// to the same file result in separate cache entries.
func (c *ImageCache) Load(path string) (*LoadedImage, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if cached, ok := c.images[path]; ok {
		img = cached
	} else {
		c.images[path] = img
	}
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*LoadedImage)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Path is the file the image was read from.
	Path string `json:"path"`

	// Width is the upright image width in pixels.
	Width int `json:"width"`

	// Height is the upright image height in pixels.
	Height int `json:"height"`

	// Format is the name of the decoder that read the file: "png",
	// "jpeg", "gif", "bmp" or "webp". Detection is based on file contents.
	Format string `json:"format"`

	// Orientation is the EXIF orientation tag (1-8) that was applied.
	// 1 means the pixels were stored upright or no tag was present.
	Orientation int `json:"orientation"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadFile decodes the image at path without caching it.
func LoadFile(path string) (*LoadedImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	img, info, err := Decode(data)
	if err != nil {
		return nil, err
	}
	info.Path = path
	info.FileSizeBytes = int64(len(data))

	return &LoadedImage{Image: img, Info: info}, nil
}

// Decode decodes an encoded image, applies its EXIF orientation and
// normalizes it to NRGBA. Path and FileSizeBytes of the returned info are
// left for the caller.
func Decode(data []byte) (*image.NRGBA, ImageInfo, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ImageInfo{}, fmt.Errorf("failed to decode image: %w", err)
	}

	orient := 1
	if format == "jpeg" {
		orient = exifOrientation(data)
	}

	img := orientImage(imaging.Clone(src), orient)
	bounds := img.Bounds()

	return img, ImageInfo{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		Format:      format,
		Orientation: orient,
	}, nil
}

// exifOrientation reads the EXIF orientation tag, defaulting to 1 when the
// data has no usable tag.
func exifOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil || x == nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil || tag == nil || tag.Count == 0 {
		return 1
	}
	orient, err := tag.Int(0)
	if err != nil || orient < 1 || orient > 8 {
		return 1
	}
	return orient
}

// orientImage turns an image stored with the given EXIF orientation upright.
func orientImage(img *image.NRGBA, orient int) *image.NRGBA {
	switch orient {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
