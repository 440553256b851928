package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
)

// DefaultJPEGQuality is used when re-encoding generated images.
const DefaultJPEGQuality = 90

// ReencodeJPEG decodes data in any supported raster format and re-encodes
// it as JPEG. Transparent pixels are composited over a white background
// first, since JPEG has no alpha channel.
func ReencodeJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode for jpeg re-encode: %w", err)
	}

	bounds := img.Bounds()
	flattened := image.NewRGBA(bounds)
	draw.Draw(flattened, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flattened, bounds, img, bounds.Min, draw.Over)

	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, flattened, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("imaging: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
