package services

import (
	"log"
	"math"
)

// CollectionStop is one bin visit on a planned collection run
type CollectionStop struct {
	Sequence   int           `json:"sequence"`
	Bin        BinPrediction `json:"bin"`
	DistanceKm float64       `json:"distance_from_previous_km"`
}

type CollectionRoute struct {
	Start           Location         `json:"start"`
	Stops           []CollectionStop `json:"stops"`
	TotalDistanceKm float64          `json:"total_distance_km"`
	SkippedNoCoords int              `json:"skipped_without_coordinates"`
}

// PlanCollectionRoute orders the high and medium priority bins by nearest
// neighbour from start. Bins without coordinates are counted and skipped.
func PlanCollectionRoute(predictions []BinPrediction, start Location) CollectionRoute {
	route := CollectionRoute{Start: start, Stops: []CollectionStop{}}

	remaining := make([]BinPrediction, 0, len(predictions))
	for _, p := range predictions {
		if p.Priority != PriorityHigh && p.Priority != PriorityMedium {
			continue
		}
		if p.Latitude == nil || p.Longitude == nil {
			route.SkippedNoCoords++
			continue
		}
		remaining = append(remaining, p)
	}

	current := start
	for len(remaining) > 0 {
		bestIdx := 0
		bestDistance := math.MaxFloat64
		for i, p := range remaining {
			distance := haversineDistance(current.Latitude, current.Longitude, *p.Latitude, *p.Longitude)
			if distance < bestDistance {
				bestDistance = distance
				bestIdx = i
			}
		}

		best := remaining[bestIdx]
		route.Stops = append(route.Stops, CollectionStop{
			Sequence:   len(route.Stops) + 1,
			Bin:        best,
			DistanceKm: math.Round(bestDistance*100) / 100,
		})
		route.TotalDistanceKm += bestDistance

		current = Location{Latitude: *best.Latitude, Longitude: *best.Longitude}
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	route.TotalDistanceKm = math.Round(route.TotalDistanceKm*100) / 100
	log.Printf("✅ [COLLECTION-ROUTE] Planned %d stops, %.2f km", len(route.Stops), route.TotalDistanceKm)
	return route
}
