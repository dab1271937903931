package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"binsmart-backend/internal/apperr"
	"binsmart-backend/internal/models"
)

// CreateUser inserts a registered user. Duplicate username or email is
// reported as InvalidInput.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (id, username, email, password, role, total_points, last_activity, region, created_at)
		VALUES (:id, :username, :email, :password, :role, :total_points, :last_activity, :region, :created_at)
	`, user)
	return wrapErr("create user", err)
}

// SetUserRole changes the role of the user with the given email
func (r *Repository) SetUserRole(ctx context.Context, email, role string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET role = $1 WHERE email = $2`, role, email)
	if err != nil {
		return wrapErr("set user role", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperr.NotFound("user %s not found", email)
	}
	return nil
}

func (r *Repository) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	entries := []models.LeaderboardEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT username, total_points, created_at FROM users
		ORDER BY total_points DESC, created_at ASC
		LIMIT $1
	`, limit)
	return entries, wrapErr("leaderboard", err)
}

func (r *Repository) UserStats(ctx context.Context, userID string) ([]models.WasteTypeStat, error) {
	stats := []models.WasteTypeStat{}
	err := r.db.SelectContext(ctx, &stats, `
		SELECT waste_type, COUNT(*) AS scan_count, COALESCE(SUM(points_earned), 0) AS total_points_from_type
		FROM waste_scans
		WHERE user_id = $1
		GROUP BY waste_type
		ORDER BY scan_count DESC, waste_type ASC
	`, userID)
	return stats, wrapErr("user stats", err)
}

func (r *Repository) ListScans(ctx context.Context, userID string, limit int) ([]models.WasteScan, error) {
	scans := []models.WasteScan{}
	err := r.db.SelectContext(ctx, &scans, `
		SELECT * FROM waste_scans
		WHERE user_id = $1
		ORDER BY scan_date DESC
		LIMIT $2
	`, userID, limit)
	return scans, wrapErr("list scans", err)
}

func (r *Repository) ListRedemptions(ctx context.Context, userID string) ([]models.RewardRedemption, error) {
	redemptions := []models.RewardRedemption{}
	err := r.db.SelectContext(ctx, &redemptions, `
		SELECT * FROM reward_redemptions
		WHERE user_id = $1
		ORDER BY redemption_date DESC
	`, userID)
	return redemptions, wrapErr("list redemptions", err)
}

func (r *Repository) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	query := `SELECT * FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`

	notifications := []models.Notification{}
	err := r.db.SelectContext(ctx, &notifications, query, userID, limit)
	return notifications, wrapErr("list notifications", err)
}

// MarkNotificationRead flips the read flag on a notification owned by userID
func (r *Repository) MarkNotificationRead(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return wrapErr("mark notification read", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return wrapErr("mark notification read", err)
	}
	if rows == 0 {
		return apperr.NotFound("notification %s not found", id)
	}
	return nil
}

func (r *Repository) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	if err != nil {
		return 0, wrapErr("mark all notifications read", err)
	}
	rows, err := result.RowsAffected()
	return rows, wrapErr("mark all notifications read", err)
}

func (r *Repository) InsertComplaint(ctx context.Context, c *models.Complaint) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO bin_complaints (id, user_id, bin_id, complaint_type, description, status, created_at)
		VALUES (:id, :user_id, :bin_id, :complaint_type, :description, :status, :created_at)
	`, c)
	return wrapErr("insert complaint", err)
}

func (r *Repository) ResolveComplaint(ctx context.Context, id string, at time.Time) (*models.Complaint, error) {
	var complaint models.Complaint
	err := r.db.GetContext(ctx, &complaint, `
		UPDATE bin_complaints bc SET status = $1, resolved_at = $2
		FROM bins b
		WHERE bc.id = $3 AND b.id = bc.bin_id
		RETURNING bc.id, bc.user_id, bc.bin_id, bc.complaint_type, bc.description,
			bc.status, bc.created_at, bc.resolved_at, b.location_name
	`, models.ComplaintResolved, at.Unix(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("complaint %s not found", id)
	}
	if err != nil {
		return nil, wrapErr("resolve complaint", err)
	}
	return &complaint, nil
}

func (r *Repository) ListComplaints(ctx context.Context, userID *string) ([]models.Complaint, error) {
	query := `
		SELECT bc.id, bc.user_id, bc.bin_id, bc.complaint_type, bc.description,
			bc.status, bc.created_at, bc.resolved_at, b.location_name
		FROM bin_complaints bc
		JOIN bins b ON b.id = bc.bin_id
	`
	args := []interface{}{}
	if userID != nil {
		query += ` WHERE bc.user_id = $1`
		args = append(args, *userID)
	}
	query += ` ORDER BY bc.created_at DESC`

	complaints := []models.Complaint{}
	err := r.db.SelectContext(ctx, &complaints, query, args...)
	return complaints, wrapErr("list complaints", err)
}

// UpsertRating replaces any previous rating by the same user for the bin
func (r *Repository) UpsertRating(ctx context.Context, rating *models.Rating) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO bin_ratings (user_id, bin_id, rating, comment, created_at)
		VALUES (:user_id, :bin_id, :rating, :comment, :created_at)
		ON CONFLICT (user_id, bin_id)
		DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, created_at = EXCLUDED.created_at
	`, rating)
	return wrapErr("upsert rating", err)
}
