package main

import (
	"flag"
	"fmt"
	"log"

	"binsmart-backend/internal/config"
	"binsmart-backend/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	seed := flag.Bool("seed", true, "insert sample users, bins and rewards after migrating")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
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

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migration completed successfully!")

	if *seed {
		if err := database.SeedAll(db); err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
	}

	var result struct {
		Users       int `db:"users"`
		Bins        int `db:"bins"`
		ActiveBins  int `db:"active_bins"`
		Rewards     int `db:"rewards"`
		BinsNoCoord int `db:"bins_no_coord"`
	}
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM bins) AS bins,
			(SELECT COUNT(*) FROM bins WHERE is_active = TRUE) AS active_bins,
			(SELECT COUNT(*) FROM rewards) AS rewards,
			(SELECT COUNT(*) FROM bins WHERE latitude IS NULL OR longitude IS NULL) AS bins_no_coord
	`
	if err := db.Get(&result, query); err != nil {
		log.Fatalf("Failed to query summary: %v", err)
	}

	fmt.Println("\n============================================================")
	fmt.Println("MIGRATION SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Users:                   %d\n", result.Users)
	fmt.Printf("Bins:                    %d (%d active)\n", result.Bins, result.ActiveBins)
	fmt.Printf("Bins without coords:     %d (won't show on map)\n", result.BinsNoCoord)
	fmt.Printf("Rewards:                 %d\n", result.Rewards)
	fmt.Println("============================================================")
}
