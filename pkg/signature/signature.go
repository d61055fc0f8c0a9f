// Package signature normalizes signatures captured on a drawing canvas.
package signature

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
)

const (
	MaxWidth  = 600
	MaxHeight = 200
	Padding   = 10

	dataURLPrefix = "data:image/png;base64,"
	maxRawBytes   = 2 << 20
)

var (
	ErrInvalid = errors.New("signature must be a PNG image")
	ErrBlank   = errors.New("signature is blank")
)

// Decode accepts raw PNG bytes or a canvas data URL.
func Decode(raw []byte) (image.Image, error) {
	if len(raw) == 0 {
		return nil, ErrBlank
	}
	if len(raw) > maxRawBytes {
		return nil, fmt.Errorf("%w: too large", ErrInvalid)
	}
	if bytes.HasPrefix(raw, []byte("data:")) {
		s := strings.TrimSpace(string(raw))
		if !strings.HasPrefix(s, dataURLPrefix) {
			return nil, fmt.Errorf("%w: unsupported data URL", ErrInvalid)
		}
		decoded, err := base64.StdEncoding.DecodeString(s[len(dataURLPrefix):])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		raw = decoded
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return img, nil
}

// inked reports pixels that are visible and darker than near white.
func inked(r, g, b, a uint32) bool {
	if a < 0x2000 {
		return false
	}
	// color values are alpha premultiplied, undo before comparing to white
	r, g, b = r*0xffff/a, g*0xffff/a, b*0xffff/a
	lum := (299*r + 587*g + 114*b) / 1000
	return lum < 0xe000
}

// InkBounds returns the smallest rectangle containing every inked pixel.
func InkBounds(img image.Image) (image.Rectangle, bool) {
	b := img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !inked(img.At(x, y).RGBA()) {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < minX {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// fit scales (w, h) down to the maximum box keeping the aspect ratio.
func fit(w, h int) (int, int) {
	if w <= MaxWidth && h <= MaxHeight {
		return w, h
	}
	scale := float64(MaxWidth) / float64(w)
	if s := float64(MaxHeight) / float64(h); s < scale {
		scale = s
	}
	nw, nh := int(float64(w)*scale), int(float64(h)*scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}

// Normalize crops the signature to its ink plus padding, scales it to fit
// MaxWidth x MaxHeight and re-encodes it as PNG.
func Normalize(raw []byte) ([]byte, error) {
	img, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	ink, ok := InkBounds(img)
	if !ok {
		return nil, ErrBlank
	}
	crop := image.Rect(ink.Min.X-Padding, ink.Min.Y-Padding, ink.Max.X+Padding, ink.Max.Y+Padding).
		Intersect(img.Bounds())

	w, h := fit(crop.Dx(), crop.Dy())
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(out, out.Bounds(), img, crop, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode signature: %w", err)
	}
	return buf.Bytes(), nil
}
