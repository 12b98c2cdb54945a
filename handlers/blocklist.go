package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"Bitwaves/database"
)

type blockIPBody struct {
	IP     string `json:"ip"`
	Reason string `json:"reason"`
}

// BlocklistHandler manages the blocked submitter addresses. The
// in-memory blocklist is authoritative; the table write is best-effort.
func (h *Handlers) BlocklistHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": h.blocklist.List()})

	case http.MethodPost:
		var body blockIPBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if body.IP == "" {
			writeError(w, http.StatusBadRequest, "ip is required")
			return
		}

		addedBy := ""
		if user, err := GetCurrentUser(r); err == nil && user != nil {
			addedBy = user.Username
		}
		entry := h.blocklist.Add(body.IP, body.Reason, addedBy)
		if err := database.SaveBlockedIP(entry); err != nil {
			slog.Error("Error persisting blocked ip", "error", err, "ip", body.IP)
		}
		slog.Info("Blocked IP added", "ip", body.IP, "added_by", addedBy)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "entry": entry})

	case http.MethodDelete:
		ip := r.URL.Query().Get("ip")
		if ip == "" {
			writeError(w, http.StatusBadRequest, "missing ip parameter")
			return
		}
		if !h.blocklist.Remove(ip) {
			writeError(w, http.StatusNotFound, "IP not blocked")
			return
		}
		if err := database.DeleteBlockedIP(ip); err != nil {
			slog.Error("Error removing blocked ip", "error", err, "ip", ip)
		}
		slog.Info("Blocked IP removed", "ip", ip)
		writeSuccess(w)

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
