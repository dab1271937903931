package models

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	Email        string `json:"email" db:"email"`
	Password     string `json:"-" db:"password"` // Never return password in JSON
	Role         string `json:"role" db:"role"`  // "user" or "admin"
	TotalPoints  int    `json:"total_points" db:"total_points"`
	LastActivity int64  `json:"last_activity" db:"last_activity"`
	Region       string `json:"region" db:"region"`
	CreatedAt    int64  `json:"created_at" db:"created_at"`
}

type UserResponse struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	TotalPoints  int    `json:"total_points"`
	LastActivity int64  `json:"last_activity"`
	Region       string `json:"region"`
	CreatedAt    int64  `json:"created_at"`
}

func (u *User) ToUserResponse() UserResponse {
	return UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Role:         u.Role,
		TotalPoints:  u.TotalPoints,
		LastActivity: u.LastActivity,
		Region:       u.Region,
		CreatedAt:    u.CreatedAt,
	}
}

// LeaderboardEntry is one row of GET /api/leaderboard
type LeaderboardEntry struct {
	Username    string `json:"username" db:"username"`
	TotalPoints int    `json:"total_points" db:"total_points"`
	CreatedAt   int64  `json:"created_at" db:"created_at"`
}

// WasteTypeStat aggregates a user's scans per waste type
type WasteTypeStat struct {
	WasteType   string `json:"waste_type" db:"waste_type"`
	ScanCount   int    `json:"scan_count" db:"scan_count"`
	TotalPoints int    `json:"total_points_from_type" db:"total_points_from_type"`
}

// FCMToken is a registered push token for a user device
type FCMToken struct {
	ID         int    `json:"id" db:"id"`
	UserID     string `json:"user_id" db:"user_id"`
	Token      string `json:"token" db:"token"`
	DeviceType string `json:"device_type" db:"device_type"`
	CreatedAt  int64  `json:"created_at" db:"created_at"`
	UpdatedAt  int64  `json:"updated_at" db:"updated_at"`
}
