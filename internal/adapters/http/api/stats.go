package api

import (
	"maps"
	"net/http"
	"time"
)

// StatsProvider reports service state for GET /stats. The kiosk page reads
// the challenge title and kind from it.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves service stats plus the API process uptime.
type StatsHandler struct {
	statsProvider StatsProvider
	startedAt     time.Time
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, startedAt: time.Now()}
}

// HandleStats handles GET /stats.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}

	stats := make(map[string]interface{})
	maps.Copy(stats, h.statsProvider.GetStats())
	stats["uptimeSeconds"] = int64(time.Since(h.startedAt).Seconds())

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, stats)
}
