package handlers

import (
	"net/http"

	"binsmart-backend/internal/database"
	"binsmart-backend/internal/services"
	"binsmart-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

func GetRewards(repo *database.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rewards, err := repo.ListActiveRewards(r.Context())
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    rewards,
		})
	}
}

type RedeemRequest struct {
	UserID string `json:"user_id"`
}

// RedeemReward spends the caller's points on a reward. Admins may redeem on
// behalf of another user via user_id.
func RedeemReward(ledger *services.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RedeemRequest
		if r.ContentLength > 0 {
			if err := utils.DecodeJSON(r, &req); err != nil {
				utils.RespondAppError(w, err)
				return
			}
		}

		userID, ok := resolveUserID(w, r, req.UserID)
		if !ok {
			return
		}

		result, err := ledger.Redeem(r.Context(), userID, chi.URLParam(r, "id"))
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    result,
		})
	}
}
