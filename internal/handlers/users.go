package handlers

import (
	"net/http"

	"binsmart-backend/internal/database"
	"binsmart-backend/internal/services"
	"binsmart-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

func GetUser(repo *database.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "id")
		if !authorizeUser(w, r, userID) {
			return
		}

		user, err := repo.GetUser(r.Context(), userID)
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    user.ToUserResponse(),
		})
	}
}

// GetUserStats returns the balance and per-waste-type breakdown
func GetUserStats(repo *database.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "id")
		if !authorizeUser(w, r, userID) {
			return
		}

		user, err := repo.GetUser(r.Context(), userID)
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}
		stats, err := repo.UserStats(r.Context(), userID)
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		totalScans := 0
		for _, s := range stats {
			totalScans += s.ScanCount
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"user":            user.ToUserResponse(),
				"total_points":    user.TotalPoints,
				"total_scans":     totalScans,
				"waste_breakdown": stats,
			},
		})
	}
}

func GetLeaderboard(repo *database.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit", defaultLeaderboardLimit, maxLeaderboardLimit)

		entries, err := repo.Leaderboard(r.Context(), limit)
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    entries,
		})
	}
}

func GetUserScans(ledger *services.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "id")
		if !authorizeUser(w, r, userID) {
			return
		}

		limit := queryInt(r, "limit", services.DefaultHistoryLimit, services.MaxHistoryLimit)
		scans, err := ledger.History(r.Context(), userID, limit)
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    scans,
		})
	}
}

func GetUserRedemptions(repo *database.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "id")
		if !authorizeUser(w, r, userID) {
			return
		}

		redemptions, err := repo.ListRedemptions(r.Context(), userID)
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    redemptions,
		})
	}
}
