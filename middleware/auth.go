package middleware

import (
	"log/slog"
	"net/http"

	"Bitwaves/services"
)

// unauthorized logs the reason and rejects the request
func unauthorized(w http.ResponseWriter, r *http.Request, reason string) {
	slog.Debug("Rejected admin request", "reason", reason, "path", r.URL.Path)
	http.Error(w, `{"success":false,"message":"Unauthorized"}`, http.StatusUnauthorized)
}

// RequireAuth gates admin endpoints behind a valid session.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := services.GetSession(r)
		if err != nil {
			unauthorized(w, r, "No session found")
			return
		}

		userID, ok := session.Values["user_id"]
		if !ok {
			unauthorized(w, r, "User not authenticated")
			return
		}

		userIDInt, ok := userID.(int64)
		if !ok {
			unauthorized(w, r, "Invalid user_id in session")
			return
		}

		// Verify user still exists and is an admin
		user, err := services.GetUserByID(userIDInt)
		if err != nil {
			unauthorized(w, r, "User not found in database")
			return
		}
		if !user.IsAdmin {
			unauthorized(w, r, "User is not an admin")
			return
		}

		next.ServeHTTP(w, r)
	})
}
