package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"binsmart-backend/internal/apperr"
	"binsmart-backend/internal/database"
	"binsmart-backend/internal/middleware"
	"binsmart-backend/internal/models"
	"binsmart-backend/pkg/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	OK    bool                 `json:"ok"`
	Token string               `json:"token,omitempty"`
	User  *models.UserResponse `json:"user,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Region   string `json:"region"`
}

func Login(repo *database.Repository, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.RespondAppError(w, err)
			return
		}

		log.Printf("🔐 Login attempt for: %s", req.Email)

		user, err := repo.GetUserByEmail(r.Context(), req.Email)
		if err != nil {
			if !apperr.Is(err, apperr.KindNotFound) {
				utils.RespondAppError(w, err)
				return
			}
			log.Printf("❌ User not found: %s", req.Email)
			utils.RespondJSON(w, http.StatusUnauthorized, LoginResponse{OK: false})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			log.Printf("❌ Invalid password for: %s", req.Email)
			utils.RespondJSON(w, http.StatusUnauthorized, LoginResponse{OK: false})
			return
		}

		token, err := middleware.IssueToken(jwtSecret, middleware.UserClaims{UserID: user.ID, Email: user.Email, Role: user.Role}, time.Now())
		if err != nil {
			log.Printf("❌ Failed to create token: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create token")
			return
		}

		userResponse := user.ToUserResponse()
		log.Printf("✅ Login successful: %s (%s)", user.Email, user.Role)
		utils.RespondJSON(w, http.StatusOK, LoginResponse{OK: true, Token: token, User: &userResponse})
	}
}

// Register creates a regular user account and logs it in
func Register(repo *database.Repository, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			utils.RespondAppError(w, err)
			return
		}

		req.Username = strings.TrimSpace(req.Username)
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Username == "" || req.Email == "" || req.Password == "" {
			utils.RespondError(w, http.StatusBadRequest, "Username, email and password are required")
			return
		}
		if len(req.Password) < minPasswordLength {
			utils.RespondError(w, http.StatusBadRequest, "Password must be at least 6 characters")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("❌ Failed to hash password: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		now := time.Now().Unix()
		user := &models.User{
			ID:           uuid.New().String(),
			Username:     req.Username,
			Email:        req.Email,
			Password:     string(hash),
			Role:         models.RoleUser,
			LastActivity: now,
			Region:       strings.TrimSpace(req.Region),
			CreatedAt:    now,
		}
		if err := repo.CreateUser(r.Context(), user); err != nil {
			if apperr.Is(err, apperr.KindInvalidInput) {
				utils.RespondError(w, http.StatusConflict, "Username or email already registered")
				return
			}
			utils.RespondAppError(w, err)
			return
		}

		token, err := middleware.IssueToken(jwtSecret, middleware.UserClaims{UserID: user.ID, Email: user.Email, Role: user.Role}, time.Now())
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create token")
			return
		}

		userResponse := user.ToUserResponse()
		log.Printf("✅ User registered: %s (%s)", user.Username, user.ID)
		utils.RespondJSON(w, http.StatusCreated, LoginResponse{OK: true, Token: token, User: &userResponse})
	}
}
