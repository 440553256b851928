package imaging

import (
	"bytes"
	"strings"
	"testing"
)

func TestDataURIRoundTrip(t *testing.T) {
	payload := []byte{0x00, 0x01, 0xfe, 0xff, 0x42, 0x00, 0x13, 0x37}

	uri := EncodeDataURI(payload, "jpeg")
	if !strings.HasPrefix(uri, "data:image/jpeg;base64,") {
		t.Fatalf("uri prefix = %q, want data:image/jpeg;base64,", uri[:30])
	}

	decoded, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(decoded, payload) {
		t.Fatalf("round trip mismatch: got %v, want %v", decoded, payload)
	}
}

func TestDecodeDataURIBareBase64(t *testing.T) {
	payload := []byte("hello world")
	uri := EncodeDataURI(payload, "png")

	bare := uri[strings.Index(uri, ",")+1:]
	decoded, err := DecodeDataURI(bare)
	if err != nil {
		t.Fatalf("decode bare payload: %v", err)
	}
	if !bytes.Equal(decoded, payload) {
		t.Fatalf("bare decode mismatch: got %q, want %q", decoded, payload)
	}
}

func TestDecodeDataURIRejectsGarbage(t *testing.T) {
	if _, err := DecodeDataURI("data:image/png;base64,!!!not-base64!!!"); err == nil {
		t.Fatal("expected error for invalid base64 payload")
	}
}

func TestMIMEForFormat(t *testing.T) {
	cases := []struct {
		format string
		want   string
	}{
		{"jpg", "image/jpeg"},
		{"JPEG", "image/jpeg"},
		{"png", "image/png"},
		{"webp", "image/webp"},
		{"gif", "image/gif"},
		{"", ""},
		{"bmp", "image/bmp"},
	}
	for _, tc := range cases {
		if got := MIMEForFormat(tc.format); got != tc.want {
			t.Errorf("MIMEForFormat(%q) = %q, want %q", tc.format, got, tc.want)
		}
	}
}

func TestSniffFormat(t *testing.T) {
	jpegHeader := append([]byte{0xff, 0xd8, 0xff, 0xe0}, make([]byte, 64)...)
	if got := SniffFormat(jpegHeader); got != "jpeg" {
		t.Fatalf("SniffFormat(jpeg header) = %q, want jpeg", got)
	}
	if got := SniffFormat([]byte("plain text, not an image")); got != "" {
		t.Fatalf("SniffFormat(text) = %q, want empty", got)
	}
}

func TestIsDataURI(t *testing.T) {
	if !IsDataURI("data:image/jpeg;base64,abcd") {
		t.Fatal("expected data uri to be recognized")
	}
	if IsDataURI("https://example.com/image.jpg") {
		t.Fatal("url should not be recognized as data uri")
	}
}
