package imageutil

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataURL(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestResizeAndCropToSquare(t *testing.T) {
	cases := []struct {
		name          string
		width, height int
	}{
		{"landscape", 120, 60},
		{"portrait", 60, 120},
		{"square", 80, 80},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := image.NewRGBA(image.Rect(0, 0, tc.width, tc.height))
			out := resizeAndCropToSquare(src, 64)
			assert.Equal(t, 64, out.Bounds().Dx())
			assert.Equal(t, 64, out.Bounds().Dy())
		})
	}
}

func TestDecodeDataURL(t *testing.T) {
	img, err := decodeDataURL(testDataURL(t, 32, 32))
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())

	_, err = decodeDataURL("no comma here")
	assert.Error(t, err)

	_, err = decodeDataURL("data:image/png;base64,%%%")
	assert.Error(t, err)
}
