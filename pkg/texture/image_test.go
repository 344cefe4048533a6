package texture

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestCanonicalSize(t *testing.T) {
	assert.Equal(t, image.Pt(2048, 1024), CanonicalSize("sphere"))
	assert.Equal(t, image.Pt(2048, 1024), CanonicalSize(""))
	assert.Equal(t, image.Pt(2048, 1024), CanonicalSize("torus"))
	assert.Equal(t, image.Pt(2048, 2048), CanonicalSize("flat"))
	assert.Equal(t, image.Pt(2048, 2048), CanonicalSize("billboard"))
}

func TestResize(t *testing.T) {
	t.Run("scales to target", func(t *testing.T) {
		src := solidNRGBA(40, 30, color.NRGBA{R: 200, A: 255})
		out := Resize(src, image.Pt(64, 32))
		assert.Equal(t, image.Pt(64, 32), out.Bounds().Size())
		r, _, _, a := out.At(10, 10).RGBA()
		assert.InDelta(t, 200, r>>8, 2)
		assert.Equal(t, uint32(0xffff), a)
	})

	t.Run("idempotent at target size", func(t *testing.T) {
		src := solidNRGBA(64, 32, color.NRGBA{G: 10, A: 255})
		out := Resize(src, image.Pt(64, 32))
		assert.Same(t, src, out)
		assert.Same(t, out, Resize(out, image.Pt(64, 32)))
	})
}

func TestFlatten(t *testing.T) {
	t.Run("transparent becomes black", func(t *testing.T) {
		src := solidNRGBA(4, 4, color.NRGBA{R: 255, A: 0})
		out := Flatten(src)
		r, g, b, a := out.At(1, 1).RGBA()
		assert.Equal(t, []uint32{0, 0, 0, 0xffff}, []uint32{r, g, b, a})
	})

	t.Run("half alpha is composited", func(t *testing.T) {
		src := solidNRGBA(2, 2, color.NRGBA{R: 255, A: 128})
		r, _, _, a := Flatten(src).At(0, 0).RGBA()
		assert.InDelta(t, 128, r>>8, 1)
		assert.Equal(t, uint32(0xffff), a)
	})

	t.Run("opaque image untouched", func(t *testing.T) {
		src := solidNRGBA(2, 2, color.NRGBA{B: 9, A: 255})
		assert.Same(t, src, Flatten(src))
	})

	t.Run("offset bounds", func(t *testing.T) {
		src := image.NewNRGBA(image.Rect(5, 5, 9, 7))
		out := Flatten(src)
		assert.Equal(t, image.Rect(0, 0, 4, 2), out.Bounds())
	})
}

func TestSupportsAlpha(t *testing.T) {
	assert.False(t, SupportsAlpha("europa.jpg"))
	assert.False(t, SupportsAlpha("EUROPA.JPEG"))
	assert.False(t, SupportsAlpha("legacy.bmp"))
	assert.True(t, SupportsAlpha("crab.png"))
	assert.True(t, SupportsAlpha("scan.tiff"))
}

func TestEncoderFor(t *testing.T) {
	img := solidNRGBA(8, 4, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	for _, name := range []string{"a.jpg", "a.jpeg", "a.png", "a.gif", "a.bmp", "a.tif", "a.tiff"} {
		t.Run(name, func(t *testing.T) {
			enc, err := encoderFor(name, DefaultJPEGQuality)
			require.NoError(t, err)
			var buf bytes.Buffer
			require.NoError(t, enc(&buf, img))
			decoded, _, err := Decode(buf.Bytes())
			require.NoError(t, err)
			assert.Equal(t, image.Pt(8, 4), decoded.Bounds().Size())
		})
	}

	_, err := encoderFor("noext", DefaultJPEGQuality)
	assert.Error(t, err)
	_, err = encoderFor("a.webp", DefaultJPEGQuality)
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, _, err := Decode([]byte("definitely not an image"))
	assert.Error(t, err)
}

// pngDeclaring returns a tiny PNG whose header claims w x h pixels.
func pngDeclaring(t *testing.T, w, h uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidNRGBA(1, 1, color.NRGBA{A: 255})))
	data := buf.Bytes()
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestDecodeRejectsHugeDimensions(t *testing.T) {
	_, _, err := Decode(pngDeclaring(t, 60000, 60000))
	require.ErrorIs(t, err, ErrImageTooLarge)
	assert.ErrorContains(t, err, "60000x60000")
}

func TestNormalize(t *testing.T) {
	src := solidNRGBA(10, 10, color.NRGBA{R: 255, A: 0})

	jpg := Normalize(src, "moon.jpg", image.Pt(20, 10))
	assert.Equal(t, image.Pt(20, 10), jpg.Bounds().Size())
	_, _, _, a := jpg.At(3, 3).RGBA()
	assert.Equal(t, uint32(0xffff), a)

	pngOut := Normalize(src, "moon.png", image.Pt(20, 10))
	_, _, _, a = pngOut.At(3, 3).RGBA()
	assert.Equal(t, uint32(0), a)
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
