package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// MinDimension is the smallest width or height accepted from the
// generation backend. Anything below it is treated as a placeholder or
// error thumbnail rather than a real render.
const MinDimension = 100

var (
	ErrNotAnImage   = errors.New("imaging: bytes do not decode as an image")
	ErrTooSmall     = errors.New("imaging: image dimensions below minimum")
	ErrUniformColor = errors.New("imaging: image is a single solid color")
)

// Validate checks that data decodes as a raster image of plausible content:
// both dimensions at least MinDimension and not a single flat color. The
// generation backend occasionally answers 200 with a blank frame; the flat
// color check catches those.
func Validate(data []byte) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinDimension || bounds.Dy() < MinDimension {
		return fmt.Errorf("%w: %dx%d", ErrTooSmall, bounds.Dx(), bounds.Dy())
	}

	if uniform(img) {
		return ErrUniformColor
	}
	return nil
}

// uniform reports whether every pixel carries the same RGBA value, i.e.
// per-channel min equals max across the whole image.
func uniform(img image.Image) bool {
	bounds := img.Bounds()
	var (
		minR, minG, minB, minA = uint32(1 << 16), uint32(1 << 16), uint32(1 << 16), uint32(1 << 16)
		maxR, maxG, maxB, maxA uint32
	)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			minR, maxR = minU32(minR, r), maxU32(maxR, r)
			minG, maxG = minU32(minG, g), maxU32(maxG, g)
			minB, maxB = minU32(minB, b), maxU32(maxB, b)
			minA, maxA = minU32(minA, a), maxU32(maxA, a)
			if minR != maxR || minG != maxG || minB != maxB || minA != maxA {
				return false
			}
		}
	}
	return true
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
