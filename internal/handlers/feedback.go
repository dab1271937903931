package handlers

import (
	"net/http"

	"binsmart-backend/internal/models"
	"binsmart-backend/internal/services"
	"binsmart-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

func SubmitComplaint(feedback *services.FeedbackService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ComplaintRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.RespondAppError(w, err)
			return
		}

		userID, ok := resolveUserID(w, r, req.UserID)
		if !ok {
			return
		}
		req.UserID = userID

		complaint, err := feedback.SubmitComplaint(r.Context(), req)
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"data":    complaint,
		})
	}
}

// GetComplaints lists the caller's complaints. Admins see every complaint
// unless ?user_id= narrows it.
func GetComplaints(feedback *services.FeedbackService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := actingUser(w, r)
		if !ok {
			return
		}

		var userID *string
		if claims.Role == models.RoleAdmin {
			if requested := r.URL.Query().Get("user_id"); requested != "" {
				userID = &requested
			}
		} else {
			userID = &claims.UserID
		}

		complaints, err := feedback.ListComplaints(r.Context(), userID)
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    complaints,
		})
	}
}

func ResolveComplaint(feedback *services.FeedbackService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		complaint, err := feedback.ResolveComplaint(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    complaint,
		})
	}
}

func SubmitRating(feedback *services.FeedbackService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RatingRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.RespondAppError(w, err)
			return
		}

		userID, ok := resolveUserID(w, r, req.UserID)
		if !ok {
			return
		}
		req.UserID = userID

		rating, err := feedback.SubmitRating(r.Context(), req)
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    rating,
		})
	}
}
