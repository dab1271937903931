package models

const (
	NotificationInfo      = "info"
	NotificationAlert     = "alert"
	NotificationReminder  = "reminder"
	NotificationReward    = "reward"
	NotificationMilestone = "milestone"
)

// ValidNotificationType reports whether t is one of the stored notification types
func ValidNotificationType(t string) bool {
	switch t {
	case NotificationInfo, NotificationAlert, NotificationReminder, NotificationReward, NotificationMilestone:
		return true
	}
	return false
}

type Notification struct {
	ID        string `json:"id" db:"id"`
	UserID    string `json:"user_id" db:"user_id"`
	Title     string `json:"title" db:"title"`
	Message   string `json:"message" db:"message"`
	Type      string `json:"type" db:"type"`
	IsRead    bool   `json:"is_read" db:"is_read"`
	CreatedAt int64  `json:"created_at" db:"created_at"` // Unix timestamp
}

// NotificationKey selects notifications for duplicate suppression.
// Empty fields are not matched.
type NotificationKey struct {
	Title   string
	Type    string
	Message string
}

// SendNotificationRequest is the request body for POST /api/notifications/send
type SendNotificationRequest struct {
	UserIDs []string `json:"user_ids"`
	Title   string   `json:"title"`
	Message string   `json:"message"`
	Type    string   `json:"type"`
}

// BroadcastRequest is the request body for POST /api/notifications/broadcast
type BroadcastRequest struct {
	Title      string  `json:"title"`
	Message    string  `json:"message"`
	Type       string  `json:"type"`
	Region     *string `json:"region,omitempty"`
	ActiveOnly *bool   `json:"active_only,omitempty"`
}
