package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Canonical texture dimensions.
const (
	CanonicalWidth        = 2048
	EquirectangularHeight = 1024
	SquareHeight          = 2048
)

// DefaultJPEGQuality matches the quality textures have always been saved with.
const DefaultJPEGQuality = 85

// CanonicalSize returns the target dimensions for a render mode: square for flat
// and billboard objects, 2:1 equirectangular for sphere and anything else.
func CanonicalSize(renderMode string) image.Point {
	switch renderMode {
	case "flat", "billboard":
		return image.Pt(CanonicalWidth, SquareHeight)
	default:
		return image.Pt(CanonicalWidth, EquirectangularHeight)
	}
}

// MaxDecodedPixels caps the pixel count an image header may declare.
const MaxDecodedPixels = 16384 * 16384

// ErrImageTooLarge is returned by Decode for images declaring more than
// MaxDecodedPixels pixels.
var ErrImageTooLarge = errors.New("image dimensions too large")

// Decode decodes any registered format (jpeg, png, gif, webp, bmp, tiff). The
// header is read first so oversized images are rejected before allocation.
func Decode(data []byte) (image.Image, string, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxDecodedPixels {
		return nil, "", fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	return image.Decode(bytes.NewReader(data))
}

// Resize scales img to size with Catmull-Rom resampling. An image already at
// size is returned as is.
func Resize(img image.Image, size image.Point) image.Image {
	if img.Bounds().Size() == size {
		return img
	}
	dst := image.NewRGBA(image.Rectangle{Max: size})
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Flatten composites img over opaque black. Images that already report
// themselves opaque are returned unchanged.
func Flatten(img image.Image) image.Image {
	if isOpaque(img) {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rectangle{Max: b.Size()})
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

// SupportsAlpha reports whether the format implied by filename can store transparency.
func SupportsAlpha(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".bmp":
		return false
	default:
		return true
	}
}

// encoderFor returns the encoder for filename's extension.
func encoderFor(filename string, jpegQuality int) (func(*bytes.Buffer, image.Image) error, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".jpg", ".jpeg":
		return func(w *bytes.Buffer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
		}, nil
	case ".png":
		return func(w *bytes.Buffer, img image.Image) error {
			enc := png.Encoder{CompressionLevel: png.BestCompression}
			return enc.Encode(w, img)
		}, nil
	case ".gif":
		return func(w *bytes.Buffer, img image.Image) error {
			return gif.Encode(w, img, nil)
		}, nil
	case ".bmp":
		return func(w *bytes.Buffer, img image.Image) error {
			return bmp.Encode(w, img)
		}, nil
	case ".tif", ".tiff":
		return func(w *bytes.Buffer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	case "":
		return nil, fmt.Errorf("filename %q has no extension", filename)
	default:
		return nil, fmt.Errorf("unsupported output format %q", ext)
	}
}

// Normalize flattens transparency for opaque formats and resizes to size.
func Normalize(img image.Image, filename string, size image.Point) image.Image {
	if !SupportsAlpha(filename) {
		img = Flatten(img)
	}
	return Resize(img, size)
}
