package services

import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"binsmart-backend/internal/apperr"
	"binsmart-backend/internal/models"

	"github.com/google/uuid"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// MaxQuantity bounds a single disposal; MaxPointsPerScan is the INT column range
const (
	MaxQuantity      = 1000.0
	MaxPointsPerScan = math.MaxInt32
)

// DefaultPointsRate applies to waste types missing from BasePoints
const DefaultPointsRate = 5

// BasePoints is the per-unit reward for each recognised waste type
var BasePoints = map[string]int{
	"Plastic": 10,
	"Organic": 5,
	"Paper":   8,
	"E-Waste": 20,
	"Glass":   12,
}

// PointsFor returns rate(wasteType) * quantity rounded to whole points
func PointsFor(wasteType string, quantity float64) int {
	rate, ok := BasePoints[wasteType]
	if !ok {
		rate = DefaultPointsRate
	}
	return int(math.Round(float64(rate) * quantity))
}

// Ledger owns every mutation of users.total_points
type Ledger struct {
	store Store
	now   func() time.Time
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

type AwardInput struct {
	UserID     string
	BinID      *string
	WasteType  string
	Quantity   float64
	Confidence *float64
	Latitude   *float64
	Longitude  *float64
}

type AwardResult struct {
	Scan         models.WasteScan `json:"scan"`
	PointsEarned int              `json:"points_earned"`
	TotalPoints  int              `json:"total_points"`
}

type RedeemResult struct {
	Redemption  models.RewardRedemption `json:"redemption"`
	Reward      models.Reward           `json:"reward"`
	TotalPoints int                     `json:"total_points"`
}

// Award records a disposal and credits its points. The scan row and the
// balance change commit together or not at all.
func (l *Ledger) Award(ctx context.Context, in AwardInput) (*AwardResult, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.WasteType = strings.TrimSpace(in.WasteType)
	if in.UserID == "" {
		return nil, apperr.Invalid("user_id is required")
	}
	if in.WasteType == "" {
		return nil, apperr.Invalid("waste_type is required")
	}
	if math.IsNaN(in.Quantity) || math.IsInf(in.Quantity, 0) || in.Quantity < 0 {
		return nil, apperr.Invalid("quantity must be positive")
	}
	if in.Quantity > MaxQuantity {
		return nil, apperr.Invalid("quantity must not exceed %.0f", MaxQuantity)
	}
	if in.Quantity == 0 {
		in.Quantity = 1.0
	}
	if in.BinID != nil && strings.TrimSpace(*in.BinID) == "" {
		in.BinID = nil
	}

	now := l.now()
	points := PointsFor(in.WasteType, in.Quantity)
	if points < 0 || points > MaxPointsPerScan {
		return nil, apperr.Invalid("points for this scan are out of range")
	}
	scan := models.WasteScan{
		ID:              uuid.New().String(),
		UserID:          in.UserID,
		BinID:           in.BinID,
		WasteType:       in.WasteType,
		ConfidenceScore: in.Confidence,
		Quantity:        in.Quantity,
		PointsEarned:    points,
		LocationLat:     in.Latitude,
		LocationLng:     in.Longitude,
		ScanDate:        now.Unix(),
	}

	var balance int
	err := l.store.InTx(ctx, func(tx LedgerTx) error {
		newBalance, rows, err := tx.AdjustBalance(ctx, in.UserID, points, false, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperr.NotFound("user %s not found", in.UserID)
		}
		balance = newBalance

		// Bin first so a missing bin surfaces as NotFound, not an FK violation
		if in.BinID != nil {
			if err := tx.IncrementBinDisposals(ctx, *in.BinID); err != nil {
				return err
			}
		}
		return tx.InsertScan(ctx, &scan)
	})
	if err != nil {
		log.Printf("❌ [LEDGER] Award failed for user %s: %v", in.UserID, err)
		return nil, err
	}

	log.Printf("✅ [LEDGER] Awarded %d points to user %s (%s x %.2f) - balance %d", points, in.UserID, in.WasteType, in.Quantity, balance)
	return &AwardResult{Scan: scan, PointsEarned: points, TotalPoints: balance}, nil
}

// Redeem debits reward.points_required and records a completed redemption.
// The debit is a guarded decrement, so concurrent redeems cannot overdraw.
func (l *Ledger) Redeem(ctx context.Context, userID, rewardID string) (*RedeemResult, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(rewardID) == "" {
		return nil, apperr.Invalid("user_id and reward_id are required")
	}

	reward, err := l.store.GetReward(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	if !reward.IsActive {
		return nil, apperr.NotFound("reward %s not found", rewardID)
	}

	now := l.now()
	redemption := models.RewardRedemption{
		ID:             uuid.New().String(),
		UserID:         userID,
		RewardID:       reward.ID,
		PointsUsed:     reward.PointsRequired,
		Status:         models.RedemptionCompleted,
		RedemptionDate: now.Unix(),
	}

	var balance int
	err = l.store.InTx(ctx, func(tx LedgerTx) error {
		newBalance, rows, err := tx.AdjustBalance(ctx, userID, -reward.PointsRequired, true, now)
		if err != nil {
			return err
		}
		if rows == 0 {
			// Either the user is gone or the guard rejected the debit
			current, err := tx.CurrentBalance(ctx, userID)
			if err != nil {
				return err
			}
			return apperr.InsufficientBalance(current, reward.PointsRequired)
		}
		balance = newBalance
		return tx.InsertRedemption(ctx, &redemption)
	})
	if err != nil {
		log.Printf("❌ [LEDGER] Redeem of reward %s failed for user %s: %v", rewardID, userID, err)
		return nil, err
	}

	log.Printf("✅ [LEDGER] User %s redeemed %s for %d points - balance %d", userID, reward.Name, reward.PointsRequired, balance)
	return &RedeemResult{Redemption: redemption, Reward: *reward, TotalPoints: balance}, nil
}

// Balance returns the user's current total_points
func (l *Ledger) Balance(ctx context.Context, userID string) (int, error) {
	user, err := l.store.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.TotalPoints, nil
}

// History returns the user's most recent scans, newest first
func (l *Ledger) History(ctx context.Context, userID string, limit int) ([]models.WasteScan, error) {
	if _, err := l.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxHistoryLimit {
		limit = DefaultHistoryLimit
	}
	return l.store.ListScans(ctx, userID, limit)
}
