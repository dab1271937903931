package models

import "time"

// CapacityLevel is the ordered fill level reported for a bin
type CapacityLevel string

const (
	CapacityEmpty  CapacityLevel = "Empty"
	CapacityLow    CapacityLevel = "Low"
	CapacityMedium CapacityLevel = "Medium"
	CapacityHigh   CapacityLevel = "High"
	CapacityFull   CapacityLevel = "Full"
)

// FillPercentage maps the level onto the 0-100 scale. Unknown levels read as empty.
func (c CapacityLevel) FillPercentage() int {
	switch c {
	case CapacityLow:
		return 25
	case CapacityMedium:
		return 50
	case CapacityHigh:
		return 75
	case CapacityFull:
		return 100
	default:
		return 0
	}
}

func (c CapacityLevel) Valid() bool {
	switch c {
	case CapacityEmpty, CapacityLow, CapacityMedium, CapacityHigh, CapacityFull:
		return true
	}
	return false
}

type Bin struct {
	ID             string        `json:"id" db:"id"`
	LocationName   string        `json:"location_name" db:"location_name"`
	Latitude       *float64      `json:"latitude,omitempty" db:"latitude"`
	Longitude      *float64      `json:"longitude,omitempty" db:"longitude"`
	BinType        string        `json:"bin_type" db:"bin_type"`
	CapacityLevel  CapacityLevel `json:"capacity_level" db:"capacity_level"`
	TotalDisposals int           `json:"total_disposals" db:"total_disposals"`
	LastEmptied    *int64        `json:"last_emptied,omitempty" db:"last_emptied"` // Unix timestamp
	Region         string        `json:"region" db:"region"`
	IsActive       bool          `json:"is_active" db:"is_active"`
	CreatedAt      int64         `json:"created_at" db:"created_at"` // Unix timestamp
}

// BinResponse is what we send to the client with ISO timestamps
type BinResponse struct {
	ID             string        `json:"id"`
	LocationName   string        `json:"location_name"`
	Latitude       *float64      `json:"latitude,omitempty"`
	Longitude      *float64      `json:"longitude,omitempty"`
	BinType        string        `json:"bin_type"`
	CapacityLevel  CapacityLevel `json:"capacity_level"`
	FillPercentage int           `json:"fill_percentage"`
	TotalDisposals int           `json:"total_disposals"`
	LastEmptiedIso *string       `json:"lastEmptiedIso,omitempty"`
	Region         string        `json:"region"`
	IsActive       bool          `json:"is_active"`
}

// NearbyBin is a bin annotated with its distance from a query point
type NearbyBin struct {
	Bin
	DistanceKm float64 `json:"distance_km"`
}

// UpdateCapacityRequest is the request body for PATCH /api/bins/{id}/capacity
type UpdateCapacityRequest struct {
	CapacityLevel CapacityLevel `json:"capacity_level"`
	Emptied       bool          `json:"emptied"`
}

func (b *Bin) ToBinResponse() BinResponse {
	resp := BinResponse{
		ID:             b.ID,
		LocationName:   b.LocationName,
		Latitude:       b.Latitude,
		Longitude:      b.Longitude,
		BinType:        b.BinType,
		CapacityLevel:  b.CapacityLevel,
		FillPercentage: b.CapacityLevel.FillPercentage(),
		TotalDisposals: b.TotalDisposals,
		Region:         b.Region,
		IsActive:       b.IsActive,
	}

	if b.LastEmptied != nil {
		iso := time.Unix(*b.LastEmptied, 0).UTC().Format(time.RFC3339)
		resp.LastEmptiedIso = &iso
	}

	return resp
}
