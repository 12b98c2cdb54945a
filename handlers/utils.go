package handlers

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"Bitwaves/models"
	"Bitwaves/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

// ClientIP resolves the submitting address: first hop of X-Forwarded-For
// when present, otherwise the socket address. Empty when undetectable.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// IDFromQuery extracts a request id from query parameters
func IDFromQuery(r *http.Request, param string) (string, error) {
	id := r.URL.Query().Get(param)
	if id == "" {
		return "", fmt.Errorf("missing %s parameter", param)
	}
	return id, nil
}

// GetCurrentUser resolves the session to a user record
func GetCurrentUser(r *http.Request) (*models.User, error) {
	session, err := services.GetSession(r)
	if err != nil {
		return nil, err
	}

	userID, ok := session.Values["user_id"]
	if !ok {
		return nil, nil
	}

	userIDInt, ok := userID.(int64)
	if !ok {
		return nil, fmt.Errorf("invalid user_id in session")
	}

	return services.GetUserByID(userIDInt)
}

// RequirePostMethod validates that the request method is POST
func RequirePostMethod(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		handler(w, r)
	}
}
