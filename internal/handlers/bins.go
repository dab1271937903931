package handlers

import (
	"log"
	"net/http"
	"time"

	"binsmart-backend/internal/database"
	"binsmart-backend/internal/models"
	"binsmart-backend/internal/services"
	"binsmart-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

func GetBins(repo *database.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bins, err := repo.ListBins(r.Context(), r.URL.Query().Get("region"), r.URL.Query().Get("type"))
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		responses := make([]models.BinResponse, len(bins))
		for i, bin := range bins {
			responses[i] = bin.ToBinResponse()
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    responses,
		})
	}
}

// GetNearbyBins lists usable bins around ?lat=&lng= within ?radius= km
func GetNearbyBins(repo *database.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, err := queryFloat(r, "lat")
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}
		lng, err := queryFloat(r, "lng")
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}
		origin := services.Location{Latitude: lat, Longitude: lng}
		if !origin.Valid() {
			utils.RespondError(w, http.StatusBadRequest, "lat and lng are out of range")
			return
		}

		radius := services.DefaultNearbyRadiusKm
		if r.URL.Query().Get("radius") != "" {
			radius, err = queryFloat(r, "radius")
			if err != nil || radius <= 0 {
				utils.RespondError(w, http.StatusBadRequest, "radius must be a positive number")
				return
			}
		}

		bins, err := repo.ListActiveBins(r.Context())
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		nearby := services.NearestBins(bins, origin, radius, queryInt(r, "limit", services.NearbyBinsLimit, 50))
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    nearby,
		})
	}
}

// UpdateBinCapacity sets a bin's fill level (admin only)
func UpdateBinCapacity(repo *database.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req models.UpdateCapacityRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.RespondAppError(w, err)
			return
		}
		if !req.Emptied && !req.CapacityLevel.Valid() {
			utils.RespondError(w, http.StatusBadRequest, "capacity_level must be one of Empty, Low, Medium, High, Full")
			return
		}

		bin, err := repo.UpdateBinCapacity(r.Context(), id, req.CapacityLevel, req.Emptied, time.Now())
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		log.Printf("✅ [BINS] Bin %s capacity set to %s", bin.ID, bin.CapacityLevel)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    bin.ToBinResponse(),
		})
	}
}
