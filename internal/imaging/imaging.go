// Package imaging renders thumbnails of stored photos.
package imaging

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// Thumbnail size bounds in pixels.
const (
	MinSize     = 32
	MaxSize     = 1024
	DefaultSize = 256
)

// JPEGQuality is the compression quality for thumbnails.
const JPEGQuality = 80

// MaxPixels bounds the declared size of an image that will be decoded.
const MaxPixels = 50_000_000

// ErrUnsupported is returned for inputs that are not JPEG, PNG or WebP.
var ErrUnsupported = errors.New("unsupported image format")

// ErrTooLarge is returned for images declaring more than MaxPixels.
var ErrTooLarge = errors.New("image dimensions too large")

// AllowedMIME lists the decodable input types.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ParseSize reads a size query value, falling back to DefaultSize and
// clamping to [MinSize, MaxSize].
func ParseSize(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultSize
	}
	if n < MinSize {
		return MinSize
	}
	if n > MaxSize {
		return MaxSize
	}
	return n
}

// Thumbnail decodes the image in r, downscales it so neither side exceeds
// maxDim and writes it to w as JPEG.
func Thumbnail(w io.Writer, r io.Reader, maxDim int) error {
	br := bufio.NewReaderSize(r, 512)

	// Sniff the actual type from bytes, not the stored content type.
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return fmt.Errorf("reading image: %w", err)
	}
	detected := http.DetectContentType(head)
	if !AllowedMIME[detected] {
		return fmt.Errorf("%w: %s", ErrUnsupported, detected)
	}

	decodeConfig, decode := jpeg.DecodeConfig, jpeg.Decode
	switch detected {
	case "image/png":
		decodeConfig, decode = png.DecodeConfig, png.Decode
	case "image/webp":
		decodeConfig, decode = webp.DecodeConfig, webp.Decode
	}

	// Check the header before decoding allocates the pixel buffer. The
	// header bytes are replayed into the full decode.
	var header bytes.Buffer
	cfg, err := decodeConfig(io.TeeReader(br, &header))
	if err != nil {
		return fmt.Errorf("decoding image header: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	img, err := decode(io.MultiReader(&header, br))
	if err != nil {
		return fmt.Errorf("decoding image: %w", err)
	}

	img = downscale(img, maxDim)
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return fmt.Errorf("encoding JPEG: %w", err)
	}
	return nil
}

// downscale resizes the image so neither dimension exceeds maxDim,
// preserving aspect ratio. Smaller images are returned unchanged.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}
	newW = max(newW, 1)
	newH = max(newH, 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
