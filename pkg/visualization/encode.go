package visualization

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an image encoding supported by Encode
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	TIFF Format = "tiff"
	BMP  Format = "bmp"
)

var extensions = map[Format]string{
	PNG:  ".png",
	JPEG: ".jpg",
	TIFF: ".tif",
	BMP:  ".bmp",
}

// ParseFormat accepts format names and their common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return PNG, nil
	case "jpeg", "jpg":
		return JPEG, nil
	case "tiff", "tif":
		return TIFF, nil
	case "bmp":
		return BMP, nil
	}
	return "", fmt.Errorf("unsupported image format %q", s)
}

// FormatFor picks the format from a file name's extension.
func FormatFor(filename string) (Format, error) {
	return ParseFormat(filepath.Ext(filename))
}

// Extension returns the file extension, with dot, for a format name.
func Extension(format string) (string, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return "", err
	}
	return extensions[f], nil
}

// ContentType returns the MIME type of a format.
func (f Format) ContentType() string {
	return "image/" + string(f)
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case BMP:
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("unsupported image format %q", string(format))
	}
}
