package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sagi-ba/photo-to-photo/internal/domain"
)

type generateRequest struct {
	Style  string `json:"style"`
	Prompt string `json:"prompt"`
}

// ImageGenerate builds the style-augmented prompt and renders a new image.
// The same endpoint serves first-time generation from the process page and
// regeneration with a different style from the result page.
func (a *App) ImageGenerate(w http.ResponseWriter, r *http.Request) {
	s := a.ensureSession(w, r)

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	var flowErr error
	s, err := a.Sessions.Update(s.ID, func(live *domain.Session) error {
		flowErr = a.Flow.Generate(r.Context(), live, req.Style, req.Prompt)
		return flowErr
	})
	if err != nil {
		a.flowError(w, s, flowErr)
		return
	}
	a.json(w, http.StatusOK, sessionResponse{Session: s})
}
