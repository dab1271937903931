package models

var ComplaintTypes = map[string]bool{
	"full":        true,
	"broken":      true,
	"not_working": true,
	"dirty":       true,
	"other":       true,
}

const (
	ComplaintOpen       = "open"
	ComplaintInProgress = "in_progress"
	ComplaintResolved   = "resolved"
)

type Complaint struct {
	ID            string `json:"id" db:"id"`
	UserID        string `json:"user_id" db:"user_id"`
	BinID         string `json:"bin_id" db:"bin_id"`
	ComplaintType string `json:"complaint_type" db:"complaint_type"`
	Description   string `json:"description" db:"description"`
	Status        string `json:"status" db:"status"`
	CreatedAt     int64  `json:"created_at" db:"created_at"`
	ResolvedAt    *int64 `json:"resolved_at,omitempty" db:"resolved_at"`
	LocationName  string `json:"location_name,omitempty" db:"location_name"`
}

type Rating struct {
	UserID    string `json:"user_id" db:"user_id"`
	BinID     string `json:"bin_id" db:"bin_id"`
	Rating    int    `json:"rating" db:"rating"`
	Comment   string `json:"comment" db:"comment"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}

// ComplaintRequest is the request body for POST /api/feedback/complaints
type ComplaintRequest struct {
	UserID        string `json:"user_id"`
	BinID         string `json:"bin_id"`
	ComplaintType string `json:"complaint_type"`
	Description   string `json:"description"`
}

// RatingRequest is the request body for POST /api/feedback/ratings
type RatingRequest struct {
	UserID  string `json:"user_id"`
	BinID   string `json:"bin_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}
