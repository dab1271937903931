package handlers

import (
	"log"
	"net/http"

	"binsmart-backend/internal/models"
	"binsmart-backend/internal/services"
	"binsmart-backend/pkg/utils"
)

// SubmitScan records a disposal and credits points to the scanning user
func SubmitScan(ledger *services.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ScanRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.RespondAppError(w, err)
			return
		}

		userID, ok := resolveUserID(w, r, req.UserID)
		if !ok {
			return
		}

		log.Printf("📥 REQUEST: POST /api/scan - user %s, %s x %.2f", userID, req.WasteType, req.Quantity)

		result, err := ledger.Award(r.Context(), services.AwardInput{
			UserID:     userID,
			BinID:      req.BinID,
			WasteType:  req.WasteType,
			Quantity:   req.Quantity,
			Confidence: req.Confidence,
			Latitude:   req.Latitude,
			Longitude:  req.Longitude,
		})
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"data":    result,
		})
	}
}
