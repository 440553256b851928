package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sagi-ba/photo-to-photo/internal/catalog"
	"github.com/sagi-ba/photo-to-photo/internal/counter"
	"github.com/sagi-ba/photo-to-photo/internal/domain"
	"github.com/sagi-ba/photo-to-photo/internal/flow"
	"github.com/sagi-ba/photo-to-photo/internal/infra"
)

// SessionCookie carries the session identifier between requests.
const SessionCookie = "ptp_session"

// WhatsAppSender delivers a finished image to a phone number.
type WhatsAppSender interface {
	SendImage(ctx context.Context, phone, image, caption string) error
}

// App is the handler container holding every collaborator the HTTP surface
// needs.
type App struct {
	Log        infra.Logger
	Sessions   *flow.SessionStore
	Flow       *flow.Controller
	Styles     *catalog.Catalog
	Samples    *catalog.Samples
	Translator flow.Translator
	WhatsApp   WhatsAppSender // nil disables sharing
	Counters   counter.Store
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error   errorBody       `json:"error"`
	Session *domain.Session `json:"session,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, codeStr, message string) {
	a.json(w, code, errorResponse{Error: errorBody{Code: codeStr, Message: message}})
}

// flowError maps a flow transition error onto the wire, attaching the
// session so clients can follow guard redirects.
func (a *App) flowError(w http.ResponseWriter, s domain.Session, err error) {
	if redirect, ok := domain.GuardRedirect(err); ok {
		a.json(w, http.StatusConflict, errorResponse{
			Error:   errorBody{Code: "page_guard", Message: "redirect to " + string(redirect)},
			Session: &s,
		})
		return
	}
	switch {
	case errors.Is(err, domain.ErrNoImage):
		a.error(w, http.StatusUnprocessableEntity, "caption_failed", "could not read the image, try another one")
	case errors.Is(err, domain.ErrEmptyPrompt):
		a.error(w, http.StatusBadRequest, "empty_prompt", "a description is required before generating")
	case errors.Is(err, domain.ErrUnknownStyle):
		a.error(w, http.StatusBadRequest, "unknown_style", "the requested style does not exist")
	case errors.Is(err, domain.ErrInvalidPhone):
		a.error(w, http.StatusBadRequest, "invalid_phone", "phone must be digits only, at least 9 of them")
	case errors.Is(err, domain.ErrProviderFailure):
		a.error(w, http.StatusBadGateway, "generation_failed", "image generation failed, try again")
	default:
		a.error(w, http.StatusInternalServerError, "internal", "unexpected failure")
	}
}

// ensureSession resolves the caller's session, creating one (and counting
// the visit) on first contact.
func (a *App) ensureSession(w http.ResponseWriter, r *http.Request) domain.Session {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		if s, ok := a.Sessions.View(cookie.Value); ok {
			return s
		}
	}

	s := a.Sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	a.recordVisit(r.Context())
	return s
}

func (a *App) recordVisit(ctx context.Context) {
	if a.Counters == nil {
		return
	}
	if _, err := a.Counters.Increment(ctx, counter.Visits); err != nil {
		a.Log.Warn().Err(err).Msg("visit counter increment failed")
	}
	if err := a.Counters.Touch(ctx, counter.LastVisit, time.Now().UTC()); err != nil {
		a.Log.Warn().Err(err).Msg("last-visit timestamp update failed")
	}
}
