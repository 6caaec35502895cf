package core

import (
	"net/http"
)

// StatsItem is one of the busiest identifiers with its blocklist status.
type StatsItem struct {
	Identifier string `json:"identifier"`
	Count      uint32 `json:"count"`
	Blocked    bool   `json:"blocked"`
	Label      string `json:"label,omitempty"`
}

type statsResponse struct {
	// Window is the number of proxied requests the counts cover.
	Window      uint64      `json:"window"`
	Identifiers []StatsItem `json:"identifiers"`
}

// StatsHandler lists the identifiers seen most often on the proxy path in
// the recent sliding window.
// Endpoint: GET /admin/stats
// Authenticated: Yes
func (a *App) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if a.sketch == nil {
		writeJsonError(w, errorNotFound)
		return
	}

	idx := a.store.Index()
	top := a.sketch.Top()
	items := make([]StatsItem, 0, len(top))
	for _, it := range top {
		item := StatsItem{Identifier: it.Identifier, Count: it.Count}
		if e, ok := idx.Entry(it.Identifier); ok {
			item.Blocked = true
			item.Label = e.Label
		}
		items = append(items, item)
	}

	writeJson(w, http.StatusOK, statsResponse{Window: a.sketch.Window(), Identifiers: items})
}
