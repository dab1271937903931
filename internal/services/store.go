package services

import (
	"context"
	"time"

	"binsmart-backend/internal/models"
)

// Store is the relational collaborator used by the ledger and the notifier.
// Implementations wrap connectivity failures as apperr.KindStorageUnavailable
// and report missing rows as apperr.KindNotFound.
type Store interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetBin(ctx context.Context, id string) (*models.Bin, error)
	GetReward(ctx context.Context, id string) (*models.Reward, error)

	ListActiveRewards(ctx context.Context) ([]models.Reward, error)
	ListActiveBins(ctx context.Context) ([]models.Bin, error)

	// ListUsersAboveThreshold returns users with total_points >= points,
	// highest balance first
	ListUsersAboveThreshold(ctx context.Context, points int) ([]models.User, error)

	// ListScans returns the user's newest scans first
	ListScans(ctx context.Context, userID string, limit int) ([]models.WasteScan, error)

	CountRecentDisposals(ctx context.Context, binID string, since time.Time) (int, error)
	ListRedeemedRewardIDs(ctx context.Context, userID string, since time.Time) ([]string, error)

	HasRecentNotification(ctx context.Context, userID string, key models.NotificationKey, since time.Time) (bool, error)
	InsertNotification(ctx context.Context, n *models.Notification) error

	// Sweep queries
	ListInactiveUsers(ctx context.Context, activeSince, noScanSince time.Time) ([]models.User, error)
	ListBinsAtCapacity(ctx context.Context, levels []models.CapacityLevel) ([]models.Bin, error)
	ListUsersInRegion(ctx context.Context, region string, activeSince time.Time) ([]models.User, error)
	ListBroadcastTargets(ctx context.Context, region *string, activeSince *time.Time) ([]string, error)

	// InTx runs fn in a single transaction. Any error from fn rolls back.
	InTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

// LedgerTx is the set of writes that must land together
type LedgerTx interface {
	InsertScan(ctx context.Context, scan *models.WasteScan) error
	InsertRedemption(ctx context.Context, r *models.RewardRedemption) error
	IncrementBinDisposals(ctx context.Context, binID string) error

	// AdjustBalance adds delta to the user's total_points in one statement.
	// With requireFunds set the update only applies while the balance covers
	// -delta. rowsAffected is 0 when the user is missing or short of funds.
	AdjustBalance(ctx context.Context, userID string, delta int, requireFunds bool, at time.Time) (balance int, rowsAffected int64, err error)

	// CurrentBalance reads the balance inside the transaction
	CurrentBalance(ctx context.Context, userID string) (int, error)
}
