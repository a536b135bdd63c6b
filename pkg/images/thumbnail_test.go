package images

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestThumbnail(t *testing.T) {
	t.Run("tall image is resized to max height", func(t *testing.T) {
		out, err := Thumbnail(pngBytes(t, 400, 800), 300)
		require.NoError(t, err)

		img, err := jpeg.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 300, img.Bounds().Dy())
		assert.Equal(t, 150, img.Bounds().Dx())
	})

	t.Run("small image is not upscaled", func(t *testing.T) {
		out, err := Thumbnail(pngBytes(t, 100, 150), 300)
		require.NoError(t, err)

		img, err := jpeg.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 150, img.Bounds().Dy())
		assert.Equal(t, 100, img.Bounds().Dx())
	})

	t.Run("garbage input fails", func(t *testing.T) {
		_, err := Thumbnail([]byte("not an image"), 300)
		assert.Error(t, err)
	})
}
