package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"Bitwaves/services"
)

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var body loginBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := services.AuthenticateUser(body.Username, body.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !user.IsAdmin {
		writeError(w, http.StatusForbidden, "Admin access required")
		return
	}

	session, err := services.GetSession(r)
	if err != nil {
		slog.Error("Error getting session", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	session.Values["user_id"] = user.ID
	session.Values["username"] = user.Username
	if err := services.SaveSession(w, r, session); err != nil {
		slog.Error("Error saving session", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	slog.Info("Admin logged in", "username", user.Username)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "username": user.Username})
}

func (h *Handlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	session, err := services.GetSession(r)
	if err == nil {
		session.Options.MaxAge = -1
		services.SaveSession(w, r, session)
	}
	writeSuccess(w)
}
