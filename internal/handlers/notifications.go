package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"binsmart-backend/internal/database"
	"binsmart-backend/internal/models"
	"binsmart-backend/internal/services"
	"binsmart-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

var validDeviceTypes = map[string]bool{"ios": true, "android": true, "web": true}

type NearbyBinsRequest struct {
	UserID    string   `json:"user_id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	RadiusKm  float64  `json:"radius_km"`
}

type RegisterFCMTokenRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
}

// GetNotifications lists the caller's notifications, newest first.
// ?unread=true limits the list to unread ones.
func GetNotifications(repo *database.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := actingUser(w, r)
		if !ok {
			return
		}

		unreadOnly := r.URL.Query().Get("unread") == "true"
		limit := queryInt(r, "limit", defaultNotificationLimit, maxNotificationLimit)

		notifications, err := repo.ListNotifications(r.Context(), claims.UserID, unreadOnly, limit)
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    notifications,
		})
	}
}

func MarkNotificationRead(repo *database.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := actingUser(w, r)
		if !ok {
			return
		}

		if err := repo.MarkNotificationRead(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
			utils.RespondAppError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
		})
	}
}

func MarkAllNotificationsRead(repo *database.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := actingUser(w, r)
		if !ok {
			return
		}

		updated, err := repo.MarkAllNotificationsRead(r.Context(), claims.UserID)
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    map[string]int64{"updated": updated},
		})
	}
}

// SendNotification stores one notification per listed user (admin only)
func SendNotification(notifier *services.EligibilityNotifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.SendNotificationRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.RespondAppError(w, err)
			return
		}

		result, err := notifier.Send(r.Context(), req.UserIDs, req.Title, req.Message, req.Type)
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

// BroadcastNotification notifies every user matching the filters (admin only)
func BroadcastNotification(notifier *services.EligibilityNotifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.BroadcastRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.RespondAppError(w, err)
			return
		}

		in := services.BroadcastInput{
			Title:      req.Title,
			Message:    req.Message,
			Type:       req.Type,
			Region:     req.Region,
			ActiveOnly: req.ActiveOnly == nil || *req.ActiveOnly,
		}
		if in.Region != nil && strings.TrimSpace(*in.Region) == "" {
			in.Region = nil
		}

		result, err := notifier.Broadcast(r.Context(), in)
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

func TriggerMilestoneCheck(notifier *services.EligibilityNotifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sent, err := notifier.CheckMilestones(r.Context())
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    map[string]int{"notifications_sent": sent},
		})
	}
}

func TriggerRewardAlerts(notifier *services.EligibilityNotifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := notifier.SendRewardAlerts(r.Context())
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

func TriggerDisposalReminders(notifier *services.EligibilityNotifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sent, err := notifier.SendDisposalReminders(r.Context())
		if err != nil {
			utils.RespondAppError(w, err)
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"data":    map[string]int{"notifications_sent": sent},
		})
	}
}

func TriggerBinAlerts(notifier *services.EligibilityNotifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := notifier.SendFullBinAlerts(r.Context())
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

// NotifyNearbyBins sends the caller a notification listing bins near them
func NotifyNearbyBins(notifier *services.EligibilityNotifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req NearbyBinsRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.RespondAppError(w, err)
			return
		}
		if req.Latitude == nil || req.Longitude == nil {
			utils.RespondError(w, http.StatusBadRequest, "latitude and longitude are required")
			return
		}

		userID, ok := resolveUserID(w, r, req.UserID)
		if !ok {
			return
		}

		origin := services.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
		result, err := notifier.NotifyNearbyBins(r.Context(), userID, origin, req.RadiusKm)
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

// RegisterFCMToken stores the caller's device token for push delivery
func RegisterFCMToken(repo *database.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := actingUser(w, r)
		if !ok {
			return
		}

		var req RegisterFCMTokenRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.RespondAppError(w, err)
			return
		}
		if strings.TrimSpace(req.Token) == "" {
			utils.RespondError(w, http.StatusBadRequest, "token is required")
			return
		}
		if !validDeviceTypes[req.DeviceType] {
			utils.RespondError(w, http.StatusBadRequest, "device_type must be ios, android or web")
			return
		}

		if err := repo.SaveFCMToken(r.Context(), claims.UserID, req.Token, req.DeviceType, time.Now()); err != nil {
			utils.RespondAppError(w, err)
			return
		}

		log.Printf("✅ [FCM] Token registered for user %s (%s)", claims.UserID, req.DeviceType)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
		})
	}
}
