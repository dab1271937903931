package database

import (
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

type seedBin struct {
	LocationName string  `db:"location_name"`
	Latitude     float64 `db:"latitude"`
	Longitude    float64 `db:"longitude"`
	BinType      string  `db:"bin_type"`
	Region       string  `db:"region"`
}

type seedReward struct {
	Name           string `db:"name"`
	Description    string `db:"description"`
	PointsRequired int    `db:"points_required"`
	Category       string `db:"category"`
}

var sampleBins = []seedBin{
	{"Central Park - Main Entrance", 40.7831, -73.9712, "Mixed", "Manhattan"},
	{"Downtown Recycling Center", 40.7589, -73.9851, "Plastic", "Manhattan"},
	{"City Hall - East Side", 40.7128, -74.0060, "Paper", "Manhattan"},
	{"Tech District E-Waste Point", 40.7505, -73.9934, "E-Waste", "Manhattan"},
	{"Riverside Glass Collection", 40.7827, -73.9734, "Glass", "Manhattan"},
	{"Brooklyn Bridge Park", 40.7023, -73.9969, "Mixed", "Brooklyn"},
	{"Queens Community Center", 40.7282, -73.7949, "Organic", "Queens"},
	{"Bronx Zoo Entrance", 40.8506, -73.8773, "Mixed", "Bronx"},
}

var sampleRewards = []seedReward{
	{"Coffee Shop Discount", "10% off at participating coffee shops", 50, "Food & Drink"},
	{"Public Transport Credit", "$5 credit for public transportation", 100, "Transport"},
	{"Eco-Friendly Tote Bag", "Reusable shopping bag made from recycled materials", 150, "Merchandise"},
	{"Plant a Tree Certificate", "We'll plant a tree in your name", 300, "Environmental"},
	{"Green Energy Discount", "20% off renewable energy subscription", 500, "Energy"},
}

// SeedBins inserts the sample bins when the table is empty
func SeedBins(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM bins"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Bins already seeded, skipping...")
		return nil
	}

	log.Printf("🌱 Seeding %d bins...", len(sampleBins))

	for _, bin := range sampleBins {
		_, err := db.Exec(`
			INSERT INTO bins (id, location_name, latitude, longitude, bin_type, region)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New().String(), bin.LocationName, bin.Latitude, bin.Longitude, bin.BinType, bin.Region)
		if err != nil {
			return err
		}
	}

	log.Printf("✓ Successfully seeded %d bins", len(sampleBins))
	return nil
}

// SeedRewards inserts the sample reward catalog. Existing names are left alone.
func SeedRewards(db *sqlx.DB) error {
	log.Println("🌱 Seeding rewards...")

	for _, reward := range sampleRewards {
		_, err := db.Exec(`
			INSERT INTO rewards (id, name, description, points_required, category)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (name) DO NOTHING
		`, uuid.New().String(), reward.Name, reward.Description, reward.PointsRequired, reward.Category)
		if err != nil {
			return err
		}
	}

	log.Printf("✓ Reward catalog has %d seed entries", len(sampleRewards))
	return nil
}

func SeedUsers(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding test users...")

	userPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []map[string]interface{}{
		{
			"id":       uuid.New().String(),
			"username": "testuser",
			"email":    "test@binsmart.com",
			"password": string(userPassword),
			"role":     "user",
			"region":   "Manhattan",
		},
		{
			"id":       uuid.New().String(),
			"username": "admin",
			"email":    "admin@binsmart.com",
			"password": string(adminPassword),
			"role":     "admin",
			"region":   "Manhattan",
		},
	}

	for _, user := range users {
		query := `
			INSERT INTO users (id, username, email, password, role, region)
			VALUES (:id, :username, :email, :password, :role, :region)
		`
		if _, err := db.NamedExec(query, user); err != nil {
			return err
		}
		log.Printf("  ✓ Created user: %s (%s)", user["username"], user["role"])
	}

	log.Println("✓ Successfully seeded test users")
	log.Println("  📧 User:  test@binsmart.com / password")
	log.Println("  📧 Admin: admin@binsmart.com / admin123")
	return nil
}

// SeedAll runs every seeder in dependency order
func SeedAll(db *sqlx.DB) error {
	if err := SeedUsers(db); err != nil {
		return err
	}
	if err := SeedBins(db); err != nil {
		return err
	}
	return SeedRewards(db)
}
