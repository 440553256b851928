package imaging

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// EncodeDataURI wraps raw image bytes as a data URI. The format hint is an
// extension-like token ("jpeg", "png"); when empty the content type is
// sniffed from the bytes.
func EncodeDataURI(data []byte, format string) string {
	mimeType := MIMEForFormat(format)
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf("data:%s;base64,%s", mimeType, encoded)
}

// DecodeDataURI returns the raw bytes of a data URI. Bare base64 payloads
// without the data: prefix are accepted, mirroring the permissive inputs
// the messaging senders receive.
func DecodeDataURI(uri string) ([]byte, error) {
	payload := uri
	if idx := strings.Index(payload, ","); idx >= 0 {
		payload = payload[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("imaging: decode data uri: %w", err)
	}
	return data, nil
}

// IsDataURI reports whether s carries an inline base64 image payload.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:image")
}

// MIMEForFormat maps a format hint to an image MIME type. Unknown hints
// yield an empty string so callers can fall back to sniffing.
func MIMEForFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "":
		return ""
	default:
		return "image/" + strings.ToLower(strings.TrimSpace(format))
	}
}

// SniffFormat returns the extension-like token for the detected content
// type of data ("jpeg", "png", ...), or an empty string when the bytes do
// not look like an image.
func SniffFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return ""
	}
	format := strings.TrimPrefix(contentType, "image/")
	if format == "jpg" {
		format = "jpeg"
	}
	return format
}
