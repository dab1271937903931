package utils

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"binsmart-backend/internal/apperr"
)

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError sends an error response
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// RespondAppError maps a classified error to its status code. Insufficient
// balance responses also carry the balance and the required points.
func RespondAppError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("❌ [HTTP] %d: %v", status, err)
	}

	var ib *apperr.InsufficientBalanceError
	if errors.As(err, &ib) {
		RespondJSON(w, status, map[string]interface{}{
			"success":  false,
			"error":    apperr.Message(err),
			"balance":  ib.Balance,
			"required": ib.Required,
		})
		return
	}

	RespondError(w, status, apperr.Message(err))
}

// DecodeJSON reads the request body into dst, reporting malformed JSON as
// invalid input
func DecodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Invalid("Invalid request body")
	}
	return nil
}
