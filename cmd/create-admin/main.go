package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"binsmart-backend/internal/apperr"
	"binsmart-backend/internal/config"
	"binsmart-backend/internal/database"
	"binsmart-backend/internal/models"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	email := flag.String("email", "", "admin email (required)")
	username := flag.String("username", "", "username for a new account (defaults to the email local part)")
	password := flag.String("password", "", "password for a new account")
	region := flag.String("region", "", "region for a new account")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	*email = strings.TrimSpace(strings.ToLower(*email))
	if *email == "" {
		log.Fatal("-email is required")
	}

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	ctx := context.Background()

	// Promote an existing account when there is one
	if _, err := repo.GetUserByEmail(ctx, *email); err == nil {
		if err := repo.SetUserRole(ctx, *email, models.RoleAdmin); err != nil {
			log.Fatalf("Failed to promote %s: %v", *email, err)
		}
		log.Printf("✅ Promoted %s to admin", *email)
		return
	} else if !apperr.Is(err, apperr.KindNotFound) {
		log.Fatalf("Failed to look up %s: %v", *email, err)
	}

	if *password == "" {
		log.Fatal("-password is required when creating a new admin")
	}
	if *username == "" {
		*username = strings.SplitN(*email, "@", 2)[0]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now().Unix()
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     *username,
		Email:        *email,
		Password:     string(hash),
		Role:         models.RoleAdmin,
		LastActivity: now,
		Region:       *region,
		CreatedAt:    now,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}
	log.Printf("✅ Created admin %s (%s)", user.Email, user.ID)
}
