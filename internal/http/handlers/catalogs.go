package handlers

import (
	"net/http"

	"github.com/sagi-ba/photo-to-photo/internal/catalog"
)

type stylesResponse struct {
	Styles []catalog.Style `json:"styles"`
}

type samplesResponse struct {
	Samples []catalog.SampleImage `json:"samples"`
}

// StylesList returns the sorted style catalog.
func (a *App) StylesList(w http.ResponseWriter, r *http.Request) {
	styles, err := a.Styles.Styles()
	if err != nil {
		a.Log.Error().Err(err).Msg("style catalog load failed")
		a.error(w, http.StatusInternalServerError, "internal", "style catalog unavailable")
		return
	}
	a.json(w, http.StatusOK, stylesResponse{Styles: styles})
}

// SamplesList returns the bundled example images as data URIs.
func (a *App) SamplesList(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, samplesResponse{Samples: a.Samples.List()})
}
