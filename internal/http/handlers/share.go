package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sagi-ba/photo-to-photo/internal/domain"
	"github.com/sagi-ba/photo-to-photo/internal/messaging/whatsapp"
)

// whatsappCaption accompanies every shared creation.
const whatsappCaption = "✨ יצירת אמנות ייחודית שנוצרה במיוחד עבורכם באמצעות מחולל התמונות החכם! 🎉"

type shareRequest struct {
	Phone string `json:"phone"`
}

type shareResponse struct {
	Sent  bool   `json:"sent"`
	Phone string `json:"phone"`
}

// ShareWhatsApp sends the generated image to a phone number. Unlike the
// Telegram side channel this is user-initiated and synchronous, with
// explicit success or failure feedback.
func (a *App) ShareWhatsApp(w http.ResponseWriter, r *http.Request) {
	s := a.ensureSession(w, r)

	if a.WhatsApp == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "whatsapp sharing is not configured")
		return
	}

	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	// Reject malformed numbers before touching the session or the network.
	if err := whatsapp.ValidatePhone(req.Phone); err != nil {
		a.flowError(w, s, err)
		return
	}

	if !s.ImageProcessed || s.GeneratedImage == "" {
		a.json(w, http.StatusConflict, errorResponse{
			Error:   errorBody{Code: "page_guard", Message: "redirect to " + string(domain.PageProcess)},
			Session: &s,
		})
		return
	}

	if err := a.WhatsApp.SendImage(r.Context(), req.Phone, s.GeneratedImage, whatsappCaption); err != nil {
		a.Log.Error().Err(err).Msg("whatsapp delivery failed")
		a.error(w, http.StatusBadGateway, "send_failed", "could not deliver the image")
		return
	}
	a.json(w, http.StatusOK, shareResponse{Sent: true, Phone: whatsapp.NormalizePhone(req.Phone)})
}
