package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// encodePNG builds a test image of the given size. Pixels are filled with
// fill unless vary is set, in which case one corner pixel differs.
func encodePNG(t *testing.T, w, h int, fill color.RGBA, vary bool) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	if vary {
		img.SetRGBA(0, 0, color.RGBA{R: fill.R ^ 0xff, G: fill.G, B: fill.B, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestValidateAcceptsRealImage(t *testing.T) {
	data := encodePNG(t, 120, 120, color.RGBA{R: 40, G: 90, B: 200, A: 255}, true)
	if err := Validate(data); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsNonImage(t *testing.T) {
	err := Validate([]byte("<html>rate limited</html>"))
	if !errors.Is(err, ErrNotAnImage) {
		t.Fatalf("err = %v, want ErrNotAnImage", err)
	}
}

func TestValidateRejectsSmallImage(t *testing.T) {
	data := encodePNG(t, 64, 200, color.RGBA{R: 10, G: 20, B: 30, A: 255}, true)
	err := Validate(data)
	if !errors.Is(err, ErrTooSmall) {
		t.Fatalf("err = %v, want ErrTooSmall", err)
	}
}

func TestValidateRejectsSolidColor(t *testing.T) {
	data := encodePNG(t, 150, 150, color.RGBA{R: 255, G: 255, B: 255, A: 255}, false)
	err := Validate(data)
	if !errors.Is(err, ErrUniformColor) {
		t.Fatalf("err = %v, want ErrUniformColor", err)
	}
}

func TestReencodeJPEG(t *testing.T) {
	src := encodePNG(t, 128, 128, color.RGBA{R: 200, G: 60, B: 60, A: 255}, true)

	out, err := ReencodeJPEG(src, 0)
	if err != nil {
		t.Fatalf("ReencodeJPEG: %v", err)
	}
	if got := SniffFormat(out); got != "jpeg" {
		t.Fatalf("reencoded format = %q, want jpeg", got)
	}

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode reencoded: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 128 || b.Dy() != 128 {
		t.Fatalf("reencoded bounds = %v, want 128x128", b)
	}
}

func TestReencodeJPEGRejectsGarbage(t *testing.T) {
	if _, err := ReencodeJPEG([]byte("not an image"), DefaultJPEGQuality); err == nil {
		t.Fatal("expected error for undecodable input")
	}
}
