package handlers

import (
	"net/http"
	"time"

	"github.com/sagi-ba/photo-to-photo/internal/counter"
)

type statsResponse struct {
	Visits    int64      `json:"visits"`
	LastVisit *time.Time `json:"last_visit,omitempty"`
}

// Stats exposes the visit counter and last-visit timestamp.
func (a *App) Stats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{}
	if a.Counters != nil {
		visits, err := a.Counters.Value(r.Context(), counter.Visits)
		if err != nil {
			a.Log.Warn().Err(err).Msg("visit counter read failed")
		}
		resp.Visits = visits
		if last, err := a.Counters.LastTouch(r.Context(), counter.LastVisit); err == nil && !last.IsZero() {
			resp.LastVisit = &last
		}
	}
	a.json(w, http.StatusOK, resp)
}
