package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"Bitwaves/services"
)

type submitRequestBody struct {
	TrackGuid   string `json:"trackGuid"`
	RequestedBy string `json:"requestedBy"`
	Message     string `json:"message"`
}

// RequestTrackHandler accepts a public song request submission. Rate and
// cooldown rejections carry a machine-readable reason and nextAllowedAt
// so the client can show a countdown.
func (h *Handlers) RequestTrackHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ip := ClientIP(r)
	if h.blocklist.IsBlocked(ip) {
		writeError(w, http.StatusForbidden, "Requests are not accepted from this address")
		return
	}

	var body submitRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if body.TrackGuid == "" {
		writeError(w, http.StatusBadRequest, "trackGuid is required")
		return
	}
	message, err := services.ValidateSubmission(body.RequestedBy, body.Message, h.cfg.MaxMessageLength)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := h.clock.Now()

	if rl := services.CheckRateLimit(h.store, ip, now, h.cfg.MaxPerHour, h.cfg.MaxPerDay); !rl.Allowed {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"success":       false,
			"reason":        "TOO_MANY_REQUESTS",
			"window":        rl.Window,
			"limit":         rl.Limit,
			"nextAllowedAt": rl.NextAllowedAt,
		})
		return
	}

	if cd := services.CheckCooldown(h.store, body.TrackGuid, now, h.cfg.PerTrackCooldown); !cd.Allowed {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"success":       false,
			"reason":        "COOLDOWN_ACTIVE",
			"nextAllowedAt": cd.NextAllowedAt,
		})
		return
	}

	request, err := h.store.AddRequest(body.TrackGuid, body.RequestedBy, message, ip)
	if err != nil {
		slog.Error("Error creating request", "error", err, "track_guid", body.TrackGuid)
		writeError(w, http.StatusInternalServerError, "Failed to submit request")
		return
	}

	slog.Info("Request created", "request_id", request.ID, "track_guid", request.TrackGuid, "requested_by", request.RequestedBy)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "request": request})
}

// RequestsHandler serves the admin request list and deletion.
func (h *Handlers) RequestsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": h.store.ListByStatusBucket()})
	case http.MethodDelete:
		h.DeleteRequestHandler(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *Handlers) HoldRequestHandler(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, "hold", h.store.HoldRequest)
}

func (h *Handlers) UnholdRequestHandler(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, "unhold", h.store.UnholdRequest)
}

// ProcessRequestHandler forces immediate processing eligibility; the
// actual delivery happens on the next processor tick.
func (h *Handlers) ProcessRequestHandler(w http.ResponseWriter, r *http.Request) {
	h.adminAction(w, r, "process", h.store.ForceProcessNow)
}

func (h *Handlers) DeleteRequestHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id, err := IDFromQuery(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.store.DeleteRequest(id) {
		writeError(w, http.StatusNotFound, "Request not found")
		return
	}
	slog.Info("Request deleted", "request_id", id)
	writeSuccess(w)
}

func (h *Handlers) adminAction(w http.ResponseWriter, r *http.Request, action string, apply func(string) bool) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id, err := IDFromQuery(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !apply(id) {
		writeError(w, http.StatusNotFound, "Request not found")
		return
	}
	slog.Info("Admin action applied", "action", action, "request_id", id)
	writeSuccess(w)
}
