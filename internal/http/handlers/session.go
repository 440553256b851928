package handlers

import (
	"net/http"

	"github.com/sagi-ba/photo-to-photo/internal/domain"
	"github.com/sagi-ba/photo-to-photo/internal/middleware"
	"github.com/sagi-ba/photo-to-photo/internal/providers/translate"
)

type sessionResponse struct {
	Session domain.Session `json:"session"`
	// DisplayDescription is the image description rendered in the UI
	// locale; the stored description stays in the captioner's English.
	DisplayDescription string `json:"display_description,omitempty"`
}

// SessionView returns the caller's session with its page normalized by the
// flow guards.
func (a *App) SessionView(w http.ResponseWriter, r *http.Request) {
	s := a.ensureSession(w, r)
	s, _ = a.Sessions.Update(s.ID, func(live *domain.Session) error {
		a.Flow.EnsurePage(live)
		return nil
	})

	resp := sessionResponse{Session: s}
	if s.ImageDescription != "" {
		resp.DisplayDescription = a.displayDescription(r, s.ImageDescription)
	}
	a.json(w, http.StatusOK, resp)
}

// SessionRestart resets every session field and returns to the upload page.
func (a *App) SessionRestart(w http.ResponseWriter, r *http.Request) {
	s := a.ensureSession(w, r)
	s, err := a.Sessions.Update(s.ID, func(live *domain.Session) error {
		a.Flow.Restart(live)
		return nil
	})
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "restart failed")
		return
	}
	a.json(w, http.StatusOK, sessionResponse{Session: s})
}

func (a *App) displayDescription(r *http.Request, description string) string {
	locale := middleware.LocaleFromContext(r.Context())
	if locale != "he" || a.Translator == nil {
		return description
	}
	translated, err := a.Translator.Translate(r.Context(), description, translate.TargetHebrew)
	if err != nil {
		a.Log.Warn().Err(err).Msg("description translation failed")
	}
	return translated
}
