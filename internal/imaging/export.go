package imaging

import (
	"archive/tar"
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/klauspost/compress/zstd"
)

// ExportFormat names an on-disk image format for exported levels.
type ExportFormat string

const (
	FormatPNG  ExportFormat = "png"
	FormatJPEG ExportFormat = "jpeg"
	FormatBMP  ExportFormat = "bmp"
)

// DefaultJPEGQuality is used when an export asks for JPEG without a quality.
const DefaultJPEGQuality = 90

// ParseExportFormat converts a configuration or flag value to an
// ExportFormat. "jpg" is accepted as an alias for "jpeg" and the empty string
// selects PNG.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(s) {
	case "", "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want png, jpeg or bmp)", s)
	}
}

// Extension returns the file extension for the format, without the dot.
func (f ExportFormat) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// encoder returns the bild encoder for the format.
func (f ExportFormat) encoder(jpegQuality int) (imgio.Encoder, error) {
	switch f {
	case FormatPNG, "":
		return imgio.PNGEncoder(), nil
	case FormatJPEG:
		if jpegQuality <= 0 || jpegQuality > 100 {
			jpegQuality = DefaultJPEGQuality
		}
		return imgio.JPEGEncoder(jpegQuality), nil
	case FormatBMP:
		return imgio.BMPEncoder(), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", f)
	}
}

// ExportOptions controls how levels are written.
type ExportOptions struct {
	Format      ExportFormat
	JPEGQuality int

	// Prefix starts every file name; "level" when empty.
	Prefix string
}

// Level is one pixelation level to export.
type Level struct {
	Level     int
	BlockSize int
	Image     image.Image
}

// ExportResult lists the files that were written.
type ExportResult struct {
	Path  string   `json:"path"`
	Files []string `json:"files"`
	Bytes int64    `json:"bytes"`
}

// LevelFileName returns the file name of a level, e.g. "level-007.png".
func LevelFileName(opts ExportOptions, level int) string {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "level"
	}
	format := opts.Format
	if format == "" {
		format = FormatPNG
	}
	return fmt.Sprintf("%s-%03d.%s", prefix, level, format.Extension())
}

// ExportDir writes every level as a separate file into dir, creating the
// directory if needed.
func ExportDir(dir string, levels []Level, opts ExportOptions) (*ExportResult, error) {
	enc, err := opts.Format.encoder(opts.JPEGQuality)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	res := &ExportResult{Path: dir}
	for _, lv := range levels {
		name := LevelFileName(opts, lv.Level)
		path := filepath.Join(dir, name)
		if err := imgio.Save(path, lv.Image, enc); err != nil {
			return nil, fmt.Errorf("failed to write level %d: %w", lv.Level, err)
		}
		if st, err := os.Stat(path); err == nil {
			res.Bytes += st.Size()
		}
		res.Files = append(res.Files, name)
	}

	return res, nil
}

// ExportArchive writes every level into a zstd-compressed tar archive at
// path. A "manifest.txt" entry maps file names to block sizes.
func ExportArchive(path string, levels []Level, opts ExportOptions) (res *ExportResult, err error) {
	enc, err := opts.Format.encoder(opts.JPEGQuality)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close archive: %w", cerr)
		}
	}()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return nil, fmt.Errorf("failed to start compression: %w", err)
	}
	tw := tar.NewWriter(zw)

	res = &ExportResult{Path: path}
	var manifest strings.Builder
	var buf bytes.Buffer
	now := time.Now()

	for _, lv := range levels {
		buf.Reset()
		if err := enc(&buf, lv.Image); err != nil {
			zw.Close()
			return nil, fmt.Errorf("failed to encode level %d: %w", lv.Level, err)
		}

		name := LevelFileName(opts, lv.Level)
		if err := writeTarEntry(tw, name, buf.Bytes(), now); err != nil {
			zw.Close()
			return nil, err
		}
		fmt.Fprintf(&manifest, "%s\t%d\t%d\n", name, lv.Level, lv.BlockSize)
		res.Files = append(res.Files, name)
	}

	if err := writeTarEntry(tw, "manifest.txt", []byte(manifest.String()), now); err != nil {
		zw.Close()
		return nil, err
	}
	if err := tw.Close(); err != nil {
		zw.Close()
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish compression: %w", err)
	}

	if st, err := f.Stat(); err == nil {
		res.Bytes = st.Size()
	}
	return res, nil
}

func writeTarEntry(tw *tar.Writer, name string, data []byte, modTime time.Time) error {
	hdr := &tar.Header{
		Name:    name,
		Mode:    0o644,
		Size:    int64(len(data)),
		ModTime: modTime,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// IsArchivePath reports whether path names a .tar.zst archive.
func IsArchivePath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".tar.zst") || strings.HasSuffix(lower, ".tzst")
}

// Export writes levels to an archive or a directory depending on path.
func Export(path string, levels []Level, opts ExportOptions) (*ExportResult, error) {
	if IsArchivePath(path) {
		return ExportArchive(path, levels, opts)
	}
	return ExportDir(path, levels, opts)
}
