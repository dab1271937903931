package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"binsmart-backend/internal/apperr"
	"binsmart-backend/internal/models"
	"binsmart-backend/internal/services"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Postgres error codes the repository classifies
const (
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
	pqUniqueViolation     = "23505"
	pqNumericOutOfRange   = "22003"
	pqInvalidTextRep      = "22P02"
)

// Repository is the Postgres implementation of the service stores
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

var (
	_ services.Store         = (*Repository)(nil)
	_ services.FeedbackStore = (*Repository)(nil)
	_ services.TokenSource   = (*Repository)(nil)
	_ services.LedgerTx      = (*ledgerTx)(nil)
)

// wrapErr classifies a driver error for op
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqForeignKeyViolation:
			return &apperr.Error{Kind: apperr.KindNotFound, Message: op + ": referenced row not found", Err: err}
		case pqCheckViolation, pqUniqueViolation, pqNumericOutOfRange, pqInvalidTextRep:
			return &apperr.Error{Kind: apperr.KindInvalidInput, Message: op + ": " + pqErr.Message, Err: err}
		}
	}
	return apperr.Storage(op, err)
}

// getOne runs a single-row query, mapping sql.ErrNoRows to NotFound
func getOne(ctx context.Context, q sqlx.QueryerContext, dest interface{}, what, id, query string, args ...interface{}) error {
	err := sqlx.GetContext(ctx, q, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("%s %s not found", what, id)
	}
	return wrapErr("get "+what, err)
}

func (r *Repository) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := getOne(ctx, r.db, &user, "user", id, `SELECT * FROM users WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := getOne(ctx, r.db, &user, "user", email, `SELECT * FROM users WHERE email = $1`, email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetBin(ctx context.Context, id string) (*models.Bin, error) {
	var bin models.Bin
	if err := getOne(ctx, r.db, &bin, "bin", id, `SELECT * FROM bins WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &bin, nil
}

func (r *Repository) GetReward(ctx context.Context, id string) (*models.Reward, error) {
	var reward models.Reward
	if err := getOne(ctx, r.db, &reward, "reward", id, `SELECT * FROM rewards WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &reward, nil
}

func (r *Repository) ListActiveRewards(ctx context.Context) ([]models.Reward, error) {
	rewards := []models.Reward{}
	err := r.db.SelectContext(ctx, &rewards, `
		SELECT * FROM rewards
		WHERE is_active = TRUE
		ORDER BY points_required ASC
	`)
	return rewards, wrapErr("list rewards", err)
}

func (r *Repository) ListActiveBins(ctx context.Context) ([]models.Bin, error) {
	bins := []models.Bin{}
	err := r.db.SelectContext(ctx, &bins, `
		SELECT * FROM bins
		WHERE is_active = TRUE
		ORDER BY location_name ASC
	`)
	return bins, wrapErr("list bins", err)
}

// ListBins returns bins for the map, optionally filtered by region and type
func (r *Repository) ListBins(ctx context.Context, region, binType string) ([]models.Bin, error) {
	query := `SELECT * FROM bins WHERE is_active = TRUE`
	args := []interface{}{}
	if region != "" {
		args = append(args, region)
		query += fmt.Sprintf(" AND region = $%d", len(args))
	}
	if binType != "" {
		args = append(args, binType)
		query += fmt.Sprintf(" AND bin_type = $%d", len(args))
	}
	query += " ORDER BY location_name ASC"

	bins := []models.Bin{}
	err := r.db.SelectContext(ctx, &bins, query, args...)
	return bins, wrapErr("list bins", err)
}

// UpdateBinCapacity sets the capacity level. With emptied set the level is
// reset to Empty and last_emptied is stamped.
func (r *Repository) UpdateBinCapacity(ctx context.Context, id string, level models.CapacityLevel, emptied bool, at time.Time) (*models.Bin, error) {
	var bin models.Bin
	var err error
	if emptied {
		err = r.db.GetContext(ctx, &bin, `
			UPDATE bins SET capacity_level = $1, last_emptied = $2
			WHERE id = $3
			RETURNING *
		`, models.CapacityEmpty, at.Unix(), id)
	} else {
		err = r.db.GetContext(ctx, &bin, `
			UPDATE bins SET capacity_level = $1
			WHERE id = $2
			RETURNING *
		`, level, id)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("bin %s not found", id)
	}
	if err != nil {
		return nil, wrapErr("update bin capacity", err)
	}
	return &bin, nil
}

func (r *Repository) ListUsersAboveThreshold(ctx context.Context, points int) ([]models.User, error) {
	users := []models.User{}
	err := r.db.SelectContext(ctx, &users, `
		SELECT * FROM users
		WHERE total_points >= $1
		ORDER BY total_points DESC, id ASC
	`, points)
	return users, wrapErr("list users above threshold", err)
}

func (r *Repository) CountRecentDisposals(ctx context.Context, binID string, since time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM waste_scans
		WHERE bin_id = $1 AND scan_date >= $2
	`, binID, since.Unix())
	return count, wrapErr("count disposals", err)
}

func (r *Repository) ListRedeemedRewardIDs(ctx context.Context, userID string, since time.Time) ([]string, error) {
	ids := []string{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT DISTINCT reward_id FROM reward_redemptions
		WHERE user_id = $1 AND redemption_date >= $2 AND status != $3
	`, userID, since.Unix(), models.RedemptionCancelled)
	return ids, wrapErr("list redemptions", err)
}

func (r *Repository) HasRecentNotification(ctx context.Context, userID string, key models.NotificationKey, since time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM notifications WHERE user_id = $1 AND created_at >= $2`
	args := []interface{}{userID, since.Unix()}
	if key.Title != "" {
		args = append(args, key.Title)
		query += fmt.Sprintf(" AND title = $%d", len(args))
	}
	if key.Type != "" {
		args = append(args, key.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if key.Message != "" {
		args = append(args, key.Message)
		query += fmt.Sprintf(" AND message = $%d", len(args))
	}
	query += ")"

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, args...)
	return exists, wrapErr("check recent notification", err)
}

func (r *Repository) InsertNotification(ctx context.Context, n *models.Notification) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO notifications (id, user_id, title, message, type, is_read, created_at)
		VALUES (:id, :user_id, :title, :message, :type, :is_read, :created_at)
	`, n)
	return wrapErr("insert notification", err)
}

func (r *Repository) ListInactiveUsers(ctx context.Context, activeSince, noScanSince time.Time) ([]models.User, error) {
	users := []models.User{}
	err := r.db.SelectContext(ctx, &users, `
		SELECT u.* FROM users u
		WHERE u.last_activity >= $1
		  AND u.total_points > 0
		  AND NOT EXISTS (
			SELECT 1 FROM waste_scans ws
			WHERE ws.user_id = u.id AND ws.scan_date >= $2
		  )
		ORDER BY u.id ASC
	`, activeSince.Unix(), noScanSince.Unix())
	return users, wrapErr("list inactive users", err)
}

func (r *Repository) ListBinsAtCapacity(ctx context.Context, levels []models.CapacityLevel) ([]models.Bin, error) {
	raw := make([]string, len(levels))
	for i, level := range levels {
		raw[i] = string(level)
	}

	bins := []models.Bin{}
	err := r.db.SelectContext(ctx, &bins, `
		SELECT * FROM bins
		WHERE is_active = TRUE AND capacity_level = ANY($1)
		ORDER BY location_name ASC
	`, pq.Array(raw))
	return bins, wrapErr("list bins at capacity", err)
}

func (r *Repository) ListUsersInRegion(ctx context.Context, region string, activeSince time.Time) ([]models.User, error) {
	users := []models.User{}
	err := r.db.SelectContext(ctx, &users, `
		SELECT * FROM users
		WHERE region = $1 AND last_activity >= $2
		ORDER BY id ASC
	`, region, activeSince.Unix())
	return users, wrapErr("list users in region", err)
}

func (r *Repository) ListBroadcastTargets(ctx context.Context, region *string, activeSince *time.Time) ([]string, error) {
	var conditions []string
	args := []interface{}{}
	if region != nil {
		args = append(args, *region)
		conditions = append(conditions, fmt.Sprintf("region = $%d", len(args)))
	}
	if activeSince != nil {
		args = append(args, activeSince.Unix())
		conditions = append(conditions, fmt.Sprintf("last_activity >= $%d", len(args)))
	}

	query := "SELECT id FROM users"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id ASC"

	ids := []string{}
	err := r.db.SelectContext(ctx, &ids, query, args...)
	return ids, wrapErr("list broadcast targets", err)
}

func (r *Repository) ListFCMTokens(ctx context.Context, userID string) ([]string, error) {
	tokens := []string{}
	err := r.db.SelectContext(ctx, &tokens, `SELECT token FROM fcm_tokens WHERE user_id = $1`, userID)
	return tokens, wrapErr("list fcm tokens", err)
}

// DeleteFCMTokens removes device tokens the push service no longer accepts
func (r *Repository) DeleteFCMTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM fcm_tokens WHERE token = ANY($1)`, pq.Array(tokens))
	return wrapErr("delete fcm tokens", err)
}

// SaveFCMToken registers a device token, moving it to userID if it was
// previously registered elsewhere
func (r *Repository) SaveFCMToken(ctx context.Context, userID, token, deviceType string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO fcm_tokens (user_id, token, device_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (token)
		DO UPDATE SET user_id = EXCLUDED.user_id, device_type = EXCLUDED.device_type, updated_at = EXCLUDED.updated_at
	`, userID, token, deviceType, at.Unix())
	return wrapErr("save fcm token", err)
}

// InTx runs fn inside a transaction, rolling back on any error
func (r *Repository) InTx(ctx context.Context, fn func(tx services.LedgerTx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrapErr("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(&ledgerTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return wrapErr("commit transaction", err)
	}
	return nil
}

type ledgerTx struct {
	tx *sqlx.Tx
}

func (t *ledgerTx) InsertScan(ctx context.Context, scan *models.WasteScan) error {
	_, err := t.tx.NamedExecContext(ctx, `
		INSERT INTO waste_scans (id, user_id, bin_id, waste_type, confidence_score, quantity, points_earned, location_lat, location_lng, scan_date)
		VALUES (:id, :user_id, :bin_id, :waste_type, :confidence_score, :quantity, :points_earned, :location_lat, :location_lng, :scan_date)
	`, scan)
	return wrapErr("insert scan", err)
}

func (t *ledgerTx) InsertRedemption(ctx context.Context, redemption *models.RewardRedemption) error {
	_, err := t.tx.NamedExecContext(ctx, `
		INSERT INTO reward_redemptions (id, user_id, reward_id, points_used, status, redemption_date)
		VALUES (:id, :user_id, :reward_id, :points_used, :status, :redemption_date)
	`, redemption)
	return wrapErr("insert redemption", err)
}

func (t *ledgerTx) IncrementBinDisposals(ctx context.Context, binID string) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE bins SET total_disposals = total_disposals + 1
		WHERE id = $1
	`, binID)
	if err != nil {
		return wrapErr("increment bin disposals", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return wrapErr("increment bin disposals", err)
	}
	if rows == 0 {
		return apperr.NotFound("bin %s not found", binID)
	}
	return nil
}

func (t *ledgerTx) AdjustBalance(ctx context.Context, userID string, delta int, requireFunds bool, at time.Time) (int, int64, error) {
	query := `
		UPDATE users SET total_points = total_points + $1, last_activity = $2
		WHERE id = $3
	`
	if requireFunds {
		query += ` AND total_points + $1 >= 0`
	}
	query += ` RETURNING total_points`

	var balance int
	err := t.tx.GetContext(ctx, &balance, query, delta, at.Unix(), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, wrapErr("adjust balance", err)
	}
	return balance, 1, nil
}

func (t *ledgerTx) CurrentBalance(ctx context.Context, userID string) (int, error) {
	var balance int
	if err := getOne(ctx, t.tx, &balance, "user", userID, `SELECT total_points FROM users WHERE id = $1`, userID); err != nil {
		return 0, err
	}
	return balance, nil
}
