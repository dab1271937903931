package models

// WasteScan is a single disposal event. Rows are append-only.
type WasteScan struct {
	ID              string   `json:"id" db:"id"`
	UserID          string   `json:"user_id" db:"user_id"`
	BinID           *string  `json:"bin_id,omitempty" db:"bin_id"`
	WasteType       string   `json:"waste_type" db:"waste_type"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty" db:"confidence_score"`
	Quantity        float64  `json:"quantity" db:"quantity"`
	PointsEarned    int      `json:"points_earned" db:"points_earned"`
	LocationLat     *float64 `json:"location_lat,omitempty" db:"location_lat"`
	LocationLng     *float64 `json:"location_lng,omitempty" db:"location_lng"`
	ScanDate        int64    `json:"scan_date" db:"scan_date"` // Unix timestamp
}

// ScanRequest is the request body for POST /api/scan
type ScanRequest struct {
	UserID     string   `json:"user_id"`
	BinID      *string  `json:"bin_id,omitempty"`
	WasteType  string   `json:"waste_type"`
	Quantity   float64  `json:"quantity"`
	Confidence *float64 `json:"confidence,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}
