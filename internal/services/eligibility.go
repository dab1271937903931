package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"binsmart-backend/internal/apperr"
	"binsmart-backend/internal/models"

	"github.com/google/uuid"
)

// Suppression windows and tunables for the notification sweeps.
// MilestoneBandWidth is the "just crossed" band above each threshold.
const (
	MilestoneBandWidth    = 100
	MilestoneCooldown     = 7 * 24 * time.Hour
	RewardAlertCooldown   = 7 * 24 * time.Hour
	RedemptionLookback    = 30 * 24 * time.Hour
	ReminderCooldown      = 7 * 24 * time.Hour
	ReminderInactivity    = 7 * 24 * time.Hour
	ActiveUserWindow      = 30 * 24 * time.Hour
	BinAlertCooldown      = 24 * time.Hour
	BinAlertActiveWindow  = 7 * 24 * time.Hour
	MaxListedRewards      = 3
	MaxListedNearbyBins   = 3
	NearbyBinsLimit       = 5
	DefaultNearbyRadiusKm = 2.0
	rewardAlertTitle      = "🎁 Rewards Available!"
	reminderTitle         = "🌱 Time to Go Green Again!"
	reminderMessage       = "Hi there! We miss seeing your eco-friendly contributions. There are smart bins nearby waiting for your next disposal. Every action counts towards a cleaner environment!"
	binAlertTitle         = "⚠️ Bin Alert"
	nearbyBinsTitle       = "📍 Smart Bins Nearby"
)

// Milestone is a points threshold announced once per cooldown window
type Milestone struct {
	Points  int
	Title   string
	Message string
}

// Milestones are ascending
var Milestones = []Milestone{
	{Points: 50, Title: "🌿 Eco Starter", Message: "Congratulations! You've earned your first 50 points. Keep up the great work!"},
	{Points: 100, Title: "♻️ Eco Beginner", Message: "Amazing! You've reached 100 points. You're making a real difference!"},
	{Points: 250, Title: "🌱 Eco Enthusiast", Message: "Fantastic! 250 points earned. Your dedication to the environment is inspiring!"},
	{Points: 500, Title: "🏆 Eco Warrior", Message: "Outstanding! 500 points achieved. You're a true environmental champion!"},
	{Points: 1000, Title: "👑 Eco Champion", Message: "Incredible! 1000 points reached. You're leading by example in environmental conservation!"},
	{Points: 2000, Title: "🌍 Eco Legend", Message: "Legendary! 2000 points - your impact on the environment is remarkable!"},
}

// EligibilityNotifier decides who to notify and stores the notifications.
//
// Duplicate suppression is a read-then-write check without a lock. Two
// overlapping sweeps may both notify the same user.
type EligibilityNotifier struct {
	store      Store
	dispatcher Deliverer
	now        func() time.Time
}

func NewEligibilityNotifier(store Store, dispatcher Deliverer) *EligibilityNotifier {
	return &EligibilityNotifier{store: store, dispatcher: dispatcher, now: time.Now}
}

type RewardAlertResult struct {
	NotificationsSent int `json:"notifications_sent"`
	EligibleUsers     int `json:"eligible_users"`
}

type BinAlertResult struct {
	NotificationsSent int `json:"notifications_sent"`
	BinsAlerted       int `json:"bins_alerted"`
}

type NearbyResult struct {
	NotificationSent bool               `json:"notification_sent"`
	NearbyBinsCount  int                `json:"nearby_bins_count"`
	Bins             []models.NearbyBin `json:"bins"`
}

type SendResult struct {
	SuccessCount   int `json:"success_count"`
	TotalAttempted int `json:"total_attempted"`
}

type BroadcastInput struct {
	Title      string
	Message    string
	Type       string
	Region     *string
	ActiveOnly bool
}

type BroadcastResult struct {
	UsersNotified int     `json:"users_notified"`
	Region        *string `json:"region"`
	ActiveOnly    bool    `json:"active_only"`
}

// create stores a notification and hands it to the dispatcher
func (n *EligibilityNotifier) create(ctx context.Context, userID, title, message, notificationType string) (*models.Notification, error) {
	notification := &models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notificationType,
		CreatedAt: n.now().Unix(),
	}
	if err := n.store.InsertNotification(ctx, notification); err != nil {
		return nil, err
	}
	if n.dispatcher != nil {
		n.dispatcher.Deliver(ctx, *notification)
	}
	return notification, nil
}

// suppressed reports whether key was already sent to userID within window
func (n *EligibilityNotifier) suppressed(ctx context.Context, userID string, key models.NotificationKey, window time.Duration) (bool, error) {
	return n.store.HasRecentNotification(ctx, userID, key, n.now().Add(-window))
}

// NotifyBestEffort is for side-effect notifications attached to another
// action. Failures are logged and swallowed.
func (n *EligibilityNotifier) NotifyBestEffort(ctx context.Context, userID, title, message, notificationType string) {
	if _, err := n.create(ctx, userID, title, message, notificationType); err != nil {
		log.Printf("⚠️  [NOTIFY] Failed to create notification %q for user %s: %v", title, userID, err)
	}
}

// CheckMilestones notifies users whose balance sits in a milestone band and
// who have not seen that milestone's title within the cooldown.
func (n *EligibilityNotifier) CheckMilestones(ctx context.Context) (int, error) {
	users, err := n.store.ListUsersAboveThreshold(ctx, Milestones[0].Points)
	if err != nil {
		return 0, err
	}

	log.Printf("[MILESTONES] Checking %d users against %d milestones", len(users), len(Milestones))

	sent := 0
	for _, milestone := range Milestones {
		for _, user := range users {
			if user.TotalPoints < milestone.Points || user.TotalPoints >= milestone.Points+MilestoneBandWidth {
				continue
			}

			skip, err := n.suppressed(ctx, user.ID, models.NotificationKey{Title: milestone.Title}, MilestoneCooldown)
			if err != nil {
				return sent, err
			}
			if skip {
				continue
			}

			if _, err := n.create(ctx, user.ID, milestone.Title, milestone.Message, models.NotificationMilestone); err != nil {
				return sent, err
			}
			sent++
			log.Printf("   🏅 %s -> user %s (%d points)", milestone.Title, user.ID, user.TotalPoints)
		}
	}

	log.Printf("✅ [MILESTONES] Sent %d milestone notifications", sent)
	return sent, nil
}

// SendRewardAlerts sends at most one reward notification per user per
// cooldown, listing the cheapest eligible rewards first.
func (n *EligibilityNotifier) SendRewardAlerts(ctx context.Context) (*RewardAlertResult, error) {
	rewards, err := n.store.ListActiveRewards(ctx)
	if err != nil {
		return nil, err
	}
	result := &RewardAlertResult{}
	if len(rewards) == 0 {
		return result, nil
	}

	sort.SliceStable(rewards, func(i, j int) bool {
		return rewards[i].PointsRequired < rewards[j].PointsRequired
	})

	users, err := n.store.ListUsersAboveThreshold(ctx, rewards[0].PointsRequired)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].TotalPoints > users[j].TotalPoints
	})

	since := n.now().Add(-RedemptionLookback)
	for _, user := range users {
		skip, err := n.suppressed(ctx, user.ID, models.NotificationKey{Type: models.NotificationReward}, RewardAlertCooldown)
		if err != nil {
			return result, err
		}
		if skip {
			continue
		}

		redeemedIDs, err := n.store.ListRedeemedRewardIDs(ctx, user.ID, since)
		if err != nil {
			return result, err
		}
		redeemed := make(map[string]bool, len(redeemedIDs))
		for _, id := range redeemedIDs {
			redeemed[id] = true
		}

		var eligible []models.Reward
		for _, reward := range rewards {
			if reward.PointsRequired <= user.TotalPoints && !redeemed[reward.ID] {
				eligible = append(eligible, reward)
			}
		}
		if len(eligible) == 0 {
			continue
		}
		result.EligibleUsers++

		if _, err := n.create(ctx, user.ID, rewardAlertTitle, RewardAlertMessage(user.TotalPoints, eligible), models.NotificationReward); err != nil {
			return result, err
		}
		result.NotificationsSent++
	}

	log.Printf("✅ [REWARD-ALERTS] Sent %d reward alerts (%d eligible users)", result.NotificationsSent, result.EligibleUsers)
	return result, nil
}

// RewardAlertMessage lists up to MaxListedRewards rewards and a "+N more" suffix
func RewardAlertMessage(totalPoints int, rewards []models.Reward) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Great news! You have %d points and can redeem:", totalPoints)
	for i, reward := range rewards {
		if i == MaxListedRewards {
			break
		}
		fmt.Fprintf(&b, "\n• %s (%d pts)", reward.Name, reward.PointsRequired)
	}
	if len(rewards) > MaxListedRewards {
		fmt.Fprintf(&b, "\n...and %d more rewards!", len(rewards)-MaxListedRewards)
	}
	return b.String()
}

// SendDisposalReminders nudges recently active users with points who have
// not disposed of anything in the last week
func (n *EligibilityNotifier) SendDisposalReminders(ctx context.Context) (int, error) {
	now := n.now()
	users, err := n.store.ListInactiveUsers(ctx, now.Add(-ActiveUserWindow), now.Add(-ReminderInactivity))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, user := range users {
		skip, err := n.suppressed(ctx, user.ID, models.NotificationKey{Title: reminderTitle}, ReminderCooldown)
		if err != nil {
			return sent, err
		}
		if skip {
			continue
		}
		if _, err := n.create(ctx, user.ID, reminderTitle, reminderMessage, models.NotificationReminder); err != nil {
			return sent, err
		}
		sent++
	}

	log.Printf("✅ [REMINDERS] Sent %d disposal reminders to %d inactive users", sent, len(users))
	return sent, nil
}

// SendFullBinAlerts warns recently active users in a region about its
// High and Full bins
func (n *EligibilityNotifier) SendFullBinAlerts(ctx context.Context) (*BinAlertResult, error) {
	bins, err := n.store.ListBinsAtCapacity(ctx, []models.CapacityLevel{models.CapacityHigh, models.CapacityFull})
	if err != nil {
		return nil, err
	}

	result := &BinAlertResult{BinsAlerted: len(bins)}
	activeSince := n.now().Add(-BinAlertActiveWindow)
	for _, bin := range bins {
		users, err := n.store.ListUsersInRegion(ctx, bin.Region, activeSince)
		if err != nil {
			return result, err
		}

		message := fmt.Sprintf("The bin at %s is nearly full. Consider using alternative bins nearby.", bin.LocationName)
		key := models.NotificationKey{Title: binAlertTitle, Message: message}
		for _, user := range users {
			skip, err := n.suppressed(ctx, user.ID, key, BinAlertCooldown)
			if err != nil {
				return result, err
			}
			if skip {
				continue
			}
			if _, err := n.create(ctx, user.ID, binAlertTitle, message, models.NotificationAlert); err != nil {
				return result, err
			}
			result.NotificationsSent++
		}
	}

	log.Printf("✅ [BIN-ALERTS] Sent %d alerts for %d bins", result.NotificationsSent, result.BinsAlerted)
	return result, nil
}

// NotifyNearbyBins tells a user about usable bins within radiusKm
func (n *EligibilityNotifier) NotifyNearbyBins(ctx context.Context, userID string, origin Location, radiusKm float64) (*NearbyResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Invalid("user_id is required")
	}
	if !origin.Valid() {
		return nil, apperr.Invalid("latitude and longitude are out of range")
	}
	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadiusKm
	}

	bins, err := n.store.ListActiveBins(ctx)
	if err != nil {
		return nil, err
	}

	nearby := NearestBins(bins, origin, radiusKm, NearbyBinsLimit)
	result := &NearbyResult{NearbyBinsCount: len(nearby), Bins: nearby}
	if len(nearby) == 0 {
		return result, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d smart bins near you:", len(nearby))
	for i, bin := range nearby {
		if i == MaxListedNearbyBins {
			break
		}
		fmt.Fprintf(&b, "\n%s (%s) - %.2fkm away", bin.LocationName, bin.BinType, bin.DistanceKm)
	}
	if len(nearby) > MaxListedNearbyBins {
		fmt.Fprintf(&b, "\n...and %d more nearby!", len(nearby)-MaxListedNearbyBins)
	}

	if _, err := n.create(ctx, userID, nearbyBinsTitle, b.String(), models.NotificationInfo); err != nil {
		return nil, err
	}
	result.NotificationSent = true
	return result, nil
}

func validateContent(title, message, notificationType string) (string, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(message) == "" {
		return "", apperr.Invalid("title and message are required")
	}
	if notificationType == "" {
		notificationType = models.NotificationInfo
	}
	if !models.ValidNotificationType(notificationType) {
		return "", apperr.Invalid("invalid notification type %q", notificationType)
	}
	return notificationType, nil
}

// Send stores the same notification for each listed user
func (n *EligibilityNotifier) Send(ctx context.Context, userIDs []string, title, message, notificationType string) (*SendResult, error) {
	notificationType, err := validateContent(title, message, notificationType)
	if err != nil {
		return nil, err
	}
	if len(userIDs) == 0 {
		return nil, apperr.Invalid("at least one user_id is required")
	}

	result := &SendResult{TotalAttempted: len(userIDs)}
	for _, userID := range userIDs {
		if _, err := n.create(ctx, userID, title, message, notificationType); err != nil {
			return result, err
		}
		result.SuccessCount++
	}
	return result, nil
}

// Broadcast notifies every user matching the region and activity filters
func (n *EligibilityNotifier) Broadcast(ctx context.Context, in BroadcastInput) (*BroadcastResult, error) {
	notificationType, err := validateContent(in.Title, in.Message, in.Type)
	if err != nil {
		return nil, err
	}

	var activeSince *time.Time
	if in.ActiveOnly {
		since := n.now().Add(-ActiveUserWindow)
		activeSince = &since
	}

	userIDs, err := n.store.ListBroadcastTargets(ctx, in.Region, activeSince)
	if err != nil {
		return nil, err
	}

	result := &BroadcastResult{Region: in.Region, ActiveOnly: in.ActiveOnly}
	for _, userID := range userIDs {
		if _, err := n.create(ctx, userID, in.Title, in.Message, notificationType); err != nil {
			return result, err
		}
		result.UsersNotified++
	}

	log.Printf("✅ [BROADCAST] %q sent to %d users", in.Title, result.UsersNotified)
	return result, nil
}
