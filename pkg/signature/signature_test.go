package signature

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

func canvas(t *testing.T, w, h int, stroke image.Rectangle) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := stroke.Min.Y; y < stroke.Max.Y; y++ {
		for x := stroke.Min.X; x < stroke.Max.X; x++ {
			img.Set(x, y, color.NRGBA{R: 10, G: 10, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeCropsToInk(t *testing.T) {
	raw := canvas(t, 500, 300, image.Rect(100, 100, 200, 150))

	out, err := Normalize(raw)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100+2*Padding, img.Bounds().Dx())
	assert.Equal(t, 50+2*Padding, img.Bounds().Dy())
}

func TestNormalizeScalesDown(t *testing.T) {
	raw := canvas(t, 1600, 400, image.Rect(0, 0, 1600, 400))

	out, err := Normalize(raw)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 600, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestNormalizeDataURL(t *testing.T) {
	raw := canvas(t, 300, 100, image.Rect(20, 20, 80, 60))
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	_, err := Normalize([]byte(dataURL))
	assert.NoError(t, err)

	_, err = Normalize([]byte("data:image/jpeg;base64,AAAA"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestNormalizeRejectsBlank(t *testing.T) {
	blank := canvas(t, 300, 100, image.Rectangle{})
	_, err := Normalize(blank)
	assert.ErrorIs(t, err, ErrBlank)

	_, err = Normalize(nil)
	assert.ErrorIs(t, err, ErrBlank)

	_, err = Normalize([]byte("not a png"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestFit(t *testing.T) {
	w, h := fit(300, 100)
	assert.Equal(t, [2]int{300, 100}, [2]int{w, h})
	w, h = fit(1200, 200)
	assert.Equal(t, [2]int{600, 100}, [2]int{w, h})
	w, h = fit(200, 800)
	assert.Equal(t, [2]int{50, 200}, [2]int{w, h})
}
