package handlers

import (
	"net/http"

	"binsmart-backend/internal/database"
	"binsmart-backend/internal/middleware"
	"binsmart-backend/internal/models"
	"binsmart-backend/internal/services"
	"binsmart-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps carries everything the HTTP layer calls into
type Deps struct {
	Repo      *database.Repository
	Ledger    *services.Ledger
	Predictor *services.BinFillPredictor
	Notifier  *services.EligibilityNotifier
	Feedback  *services.FeedbackService
	Hub       *websocket.Hub
	JWTSecret string
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	if d.Hub != nil {
		// Authenticated via token query parameter
		r.Get("/ws", websocket.HandleWebSocket(d.Hub, d.JWTSecret))
	}

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Post("/auth/login", Login(d.Repo, d.JWTSecret))
		r.Post("/users", Register(d.Repo, d.JWTSecret))
		r.Get("/leaderboard", GetLeaderboard(d.Repo))
		r.Get("/bins", GetBins(d.Repo))
		r.Get("/bins/nearby", GetNearbyBins(d.Repo))
		r.Get("/rewards", GetRewards(d.Repo))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(d.JWTSecret))

			r.Get("/users/{id}", GetUser(d.Repo))
			r.Get("/users/{id}/stats", GetUserStats(d.Repo))
			r.Get("/users/{id}/scans", GetUserScans(d.Ledger))
			r.Get("/users/{id}/redemptions", GetUserRedemptions(d.Repo))

			r.Post("/scan", SubmitScan(d.Ledger))
			r.Post("/rewards/{id}/redeem", RedeemReward(d.Ledger))

			r.Get("/notifications", GetNotifications(d.Repo))
			r.Patch("/notifications/{id}/read", MarkNotificationRead(d.Repo))
			r.Post("/notifications/read-all", MarkAllNotificationsRead(d.Repo))
			r.Post("/notifications/nearby-bins", NotifyNearbyBins(d.Notifier))
			r.Post("/notifications/fcm-token", RegisterFCMToken(d.Repo))

			r.Post("/feedback/complaints", SubmitComplaint(d.Feedback))
			r.Get("/feedback/complaints", GetComplaints(d.Feedback))
			r.Post("/feedback/ratings", SubmitRating(d.Feedback))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))

				r.Patch("/bins/{id}/capacity", UpdateBinCapacity(d.Repo))

				r.Post("/notifications/send", SendNotification(d.Notifier))
				r.Post("/notifications/broadcast", BroadcastNotification(d.Notifier))
				r.Post("/notifications/milestone-check", TriggerMilestoneCheck(d.Notifier))
				r.Post("/notifications/reward-alerts", TriggerRewardAlerts(d.Notifier))
				r.Post("/notifications/schedule-reminders", TriggerDisposalReminders(d.Notifier))
				r.Post("/notifications/bin-alerts", TriggerBinAlerts(d.Notifier))

				r.Get("/analytics/predictions/bin-fullness", GetBinFullnessPredictions(d.Predictor))
				r.Get("/analytics/collection-route", GetCollectionRoute(d.Predictor))

				r.Put("/feedback/complaints/{id}/resolve", ResolveComplaint(d.Feedback))
			})
		})
	})

	return r
}
