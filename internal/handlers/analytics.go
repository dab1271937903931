package handlers

import (
	"net/http"

	"binsmart-backend/internal/services"
	"binsmart-backend/pkg/utils"
)

// GetBinFullnessPredictions returns a fresh prediction for every active bin
func GetBinFullnessPredictions(predictor *services.BinFillPredictor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		predictions, err := predictor.PredictBins(r.Context())
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		high := 0
		for _, p := range predictions {
			if p.Priority == services.PriorityHigh {
				high++
			}
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"predictions":         predictions,
				"total_bins":          len(predictions),
				"high_priority_count": high,
			},
		})
	}
}

// GetCollectionRoute plans a run over bins predicted to fill soon, starting
// from ?lat=&lng=
func GetCollectionRoute(predictor *services.BinFillPredictor) http.HandlerFunc {
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
		start := services.Location{Latitude: lat, Longitude: lng}
		if !start.Valid() {
			utils.RespondError(w, http.StatusBadRequest, "lat and lng are out of range")
			return
		}

		predictions, err := predictor.PredictBins(r.Context())
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    services.PlanCollectionRoute(predictions, start),
		})
	}
}
