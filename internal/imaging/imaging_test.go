package imaging

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func createTestJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func decodedBounds(t *testing.T, data []byte) image.Rectangle {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds()
}

func TestThumbnailDownscalesLandscape(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Thumbnail(&out, bytes.NewReader(createTestPNG(400, 200)), 100))

	b := decodedBounds(t, out.Bytes())
	assert.Equal(t, 100, b.Dx())
	assert.Equal(t, 50, b.Dy())
}

func TestThumbnailDownscalesPortrait(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Thumbnail(&out, bytes.NewReader(createTestJPEG(200, 600)), 300))

	b := decodedBounds(t, out.Bytes())
	assert.Equal(t, 100, b.Dx())
	assert.Equal(t, 300, b.Dy())
}

func TestThumbnailKeepsSmallImages(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Thumbnail(&out, bytes.NewReader(createTestPNG(40, 30)), 256))

	b := decodedBounds(t, out.Bytes())
	assert.Equal(t, 40, b.Dx())
	assert.Equal(t, 30, b.Dy())
}

func TestThumbnailRejectsNonImages(t *testing.T) {
	var out bytes.Buffer
	err := Thumbnail(&out, bytes.NewReader([]byte("just some text")), 256)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", DefaultSize},
		{"abc", DefaultSize},
		{"10", MinSize},
		{"5000", MaxSize},
		{"128", 128},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSize(tt.raw), "raw %q", tt.raw)
	}
}

// withDeclaredSize rewrites the IHDR dimensions of a PNG without changing
// its pixel data.
func withDeclaredSize(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	out := bytes.Clone(data)
	require.Equal(t, "IHDR", string(out[12:16]))
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestThumbnailRejectsHugeDeclaredSize(t *testing.T) {
	data := withDeclaredSize(t, createTestPNG(8, 8), 60000, 60000)

	var out bytes.Buffer
	err := Thumbnail(&out, bytes.NewReader(data), 100)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Zero(t, out.Len())
}
