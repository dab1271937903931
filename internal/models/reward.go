package models

const (
	RedemptionPending   = "pending"
	RedemptionCompleted = "completed"
	RedemptionCancelled = "cancelled"
)

type Reward struct {
	ID             string `json:"id" db:"id"`
	Name           string `json:"name" db:"name"`
	Description    string `json:"description" db:"description"`
	PointsRequired int    `json:"points_required" db:"points_required"`
	Category       string `json:"category" db:"category"`
	IsActive       bool   `json:"is_active" db:"is_active"`
	CreatedAt      int64  `json:"created_at" db:"created_at"`
}

type RewardRedemption struct {
	ID             string `json:"id" db:"id"`
	UserID         string `json:"user_id" db:"user_id"`
	RewardID       string `json:"reward_id" db:"reward_id"`
	PointsUsed     int    `json:"points_used" db:"points_used"`
	Status         string `json:"status" db:"status"`
	RedemptionDate int64  `json:"redemption_date" db:"redemption_date"` // Unix timestamp
}
