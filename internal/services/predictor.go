package services

import (
	"context"
	"log"
	"math"
	"sort"
	"time"

	"binsmart-backend/internal/models"
)

// Tunable prediction parameters. FillWeightPerScan is an empirical
// fill-percentage contribution per disposal, not a derived quantity.
const (
	FillWeightPerScan    = 5.0
	HorizonDays          = 30.0
	HighPriorityDays     = 2.0
	MediumPriorityDays   = 7.0
	PredictionWindowDays = 7
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Prediction is the linear days-to-full estimate for one bin.
// DaysToFull is nil when the bin sees no disposals.
type Prediction struct {
	DailyRate  float64  `json:"daily_rate"`
	DaysToFull *float64 `json:"predicted_days_to_full"`
	Priority   string   `json:"priority"`
}

// Predict is a pure function of the current fill and the trailing-week
// disposal count
func Predict(fillPercentage int, scansLastWeek int) Prediction {
	dailyRate := float64(scansLastWeek) / float64(PredictionWindowDays)
	if dailyRate <= 0 {
		return Prediction{DailyRate: 0, DaysToFull: nil, Priority: PriorityLow}
	}

	spaceRemaining := float64(100 - fillPercentage)
	rawDays := spaceRemaining / (dailyRate * FillWeightPerScan)
	days := math.Min(rawDays, HorizonDays)

	priority := PriorityLow
	if rawDays <= HighPriorityDays {
		priority = PriorityHigh
	} else if rawDays <= MediumPriorityDays {
		priority = PriorityMedium
	}

	return Prediction{DailyRate: dailyRate, DaysToFull: &days, Priority: priority}
}

// BinPrediction is a bin with its freshly computed prediction
type BinPrediction struct {
	models.BinResponse
	ScansLastWeek         int `json:"scans_last_week"`
	CurrentFillPercentage int `json:"current_fill_percentage"`
	Prediction
}

// BinFillPredictor evaluates Predict over the active bins using live counts
type BinFillPredictor struct {
	store Store
	now   func() time.Time
}

func NewBinFillPredictor(store Store) *BinFillPredictor {
	return &BinFillPredictor{store: store, now: time.Now}
}

// PredictBins recomputes every active bin. Results are ordered by priority,
// then soonest to fill, with unbounded bins last.
func (p *BinFillPredictor) PredictBins(ctx context.Context) ([]BinPrediction, error) {
	bins, err := p.store.ListActiveBins(ctx)
	if err != nil {
		return nil, err
	}

	since := p.now().AddDate(0, 0, -PredictionWindowDays)
	predictions := make([]BinPrediction, 0, len(bins))
	for _, bin := range bins {
		scans, err := p.store.CountRecentDisposals(ctx, bin.ID, since)
		if err != nil {
			return nil, err
		}

		fill := bin.CapacityLevel.FillPercentage()
		predictions = append(predictions, BinPrediction{
			BinResponse:           bin.ToBinResponse(),
			ScansLastWeek:         scans,
			CurrentFillPercentage: fill,
			Prediction:            Predict(fill, scans),
		})
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		ri, rj := priorityRank(predictions[i].Priority), priorityRank(predictions[j].Priority)
		if ri != rj {
			return ri < rj
		}
		di, dj := predictions[i].DaysToFull, predictions[j].DaysToFull
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return *di < *dj
		}
	})

	log.Printf("✅ [PREDICT-BINS] Computed predictions for %d active bins", len(predictions))
	return predictions, nil
}

func priorityRank(priority string) int {
	switch priority {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}
