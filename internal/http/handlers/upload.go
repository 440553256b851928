package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/sagi-ba/photo-to-photo/internal/domain"
)

// maxUploadBytes caps direct uploads and camera captures.
const maxUploadBytes = 15 << 20

type sampleUploadRequest struct {
	Sample string `json:"sample"`
}

// ImageUpload accepts one of the three image sources: a multipart file
// (upload or camera capture), or a JSON body naming a bundled sample. On
// success the flow captions the image and advances to the process page.
func (a *App) ImageUpload(w http.ResponseWriter, r *http.Request) {
	s := a.ensureSession(w, r)

	data, formatHint, ok := a.readUploadPayload(w, r)
	if !ok {
		return
	}

	var flowErr error
	s, err := a.Sessions.Update(s.ID, func(live *domain.Session) error {
		flowErr = a.Flow.Upload(r.Context(), live, data, formatHint)
		return flowErr
	})
	if err != nil {
		a.flowError(w, s, flowErr)
		return
	}
	a.json(w, http.StatusOK, sessionResponse{
		Session:            s,
		DisplayDescription: a.displayDescription(r, s.ImageDescription),
	})
}

func (a *App) readUploadPayload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
			return nil, "", false
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "image file is required")
			return nil, "", false
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "could not read image file")
			return nil, "", false
		}
		return data, formatFromFilename(header.Filename), true
	}

	var req sampleUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Sample == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "expected an image file or a sample name")
		return nil, "", false
	}
	data, formatHint, err := a.Samples.Lookup(req.Sample)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "sample image not found")
		return nil, "", false
	}
	return data, formatHint, true
}

func formatFromFilename(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "jpg" {
		ext = "jpeg"
	}
	return ext
}
