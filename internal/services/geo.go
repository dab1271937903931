package services

import (
	"math"
	"sort"

	"binsmart-backend/internal/models"
)

// Location represents a geographic point
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

// NearestBins filters bins to those with coordinates within radiusKm of
// origin, nearest first, keeping at most limit. Full bins are skipped.
func NearestBins(bins []models.Bin, origin Location, radiusKm float64, limit int) []models.NearbyBin {
	nearby := make([]models.NearbyBin, 0)
	for _, bin := range bins {
		if bin.Latitude == nil || bin.Longitude == nil || bin.CapacityLevel == models.CapacityFull {
			continue
		}
		distance := haversineDistance(origin.Latitude, origin.Longitude, *bin.Latitude, *bin.Longitude)
		if distance > radiusKm {
			continue
		}
		nearby = append(nearby, models.NearbyBin{
			Bin:        bin,
			DistanceKm: math.Round(distance*100) / 100,
		})
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})

	if limit > 0 && len(nearby) > limit {
		nearby = nearby[:limit]
	}
	return nearby
}

// haversineDistance calculates the distance between two GPS coordinates in kilometers
func haversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371.0

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}
