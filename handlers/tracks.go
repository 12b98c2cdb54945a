package handlers

import (
	"log/slog"
	"net/http"
)

// TracksHandler lists the requestable track catalog from the playout
// system for the public search page.
func (h *Handlers) TracksHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	tracks, err := h.catalog.GetRequestableTracks(r.Context())
	if err != nil {
		slog.Error("Error fetching requestable tracks", "error", err)
		writeError(w, http.StatusBadGateway, "Failed to fetch tracks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "tracks": tracks})
}

// SettingsHandler exposes the limits the client mirrors in its own
// validation.
func (h *Handlers) SettingsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"maxMessageLength": h.cfg.MaxMessageLength,
	})
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
