package handlers

import (
	"net/http"
	"strconv"

	"binsmart-backend/internal/apperr"
	"binsmart-backend/internal/middleware"
	"binsmart-backend/internal/models"
	"binsmart-backend/pkg/utils"
)

// actingUser returns the caller's claims or writes a 401
func actingUser(w http.ResponseWriter, r *http.Request) (middleware.UserClaims, bool) {
	claims, ok := middleware.GetUserFromContext(r)
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return middleware.UserClaims{}, false
	}
	return claims, true
}

// authorizeUser allows a caller to act on their own account, and admins on any
func authorizeUser(w http.ResponseWriter, r *http.Request, userID string) bool {
	claims, ok := actingUser(w, r)
	if !ok {
		return false
	}
	if claims.Role != models.RoleAdmin && claims.UserID != userID {
		utils.RespondError(w, http.StatusForbidden, "Forbidden")
		return false
	}
	return true
}

// resolveUserID picks the target user for a request body field. Non-admins
// always act on themselves.
func resolveUserID(w http.ResponseWriter, r *http.Request, requested string) (string, bool) {
	claims, ok := actingUser(w, r)
	if !ok {
		return "", false
	}
	if requested == "" || requested == claims.UserID {
		return claims.UserID, true
	}
	if claims.Role != models.RoleAdmin {
		utils.RespondError(w, http.StatusForbidden, "Forbidden")
		return "", false
	}
	return requested, true
}

// queryInt reads a positive int query parameter, clamped to max
func queryInt(r *http.Request, key string, def, max int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

// queryFloat reads a required float query parameter
func queryFloat(r *http.Request, key string) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, apperr.Invalid("%s is required", key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperr.Invalid("%s must be a number", key)
	}
	return v, nil
}
