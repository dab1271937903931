package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"binsmart-backend/internal/apperr"
	"binsmart-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(store *memStore, now time.Time) (*EligibilityNotifier, *recordingDeliverer) {
	deliverer := &recordingDeliverer{}
	n := NewEligibilityNotifier(store, deliverer)
	n.now = fixedClock(now)
	return n, deliverer
}

func TestCheckMilestonesBands(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := newMemStore()
	store.addUser("starter", 60, "", now)
	store.addUser("beginner", 120, "", now)
	store.addUser("between", 380, "", now)
	store.addUser("warrior", 510, "", now)
	store.addUser("below", 10, "", now)
	notifier, deliverer := newTestNotifier(store, now)

	sent, err := notifier.CheckMilestones(context.Background())
	require.NoError(t, err)

	// 120 sits in both the 50 and 100 bands
	assert.Equal(t, 4, sent)
	assert.Len(t, deliverer.delivered, 4)

	titles := func(userID string) []string {
		var out []string
		for _, n := range store.notificationsFor(userID) {
			out = append(out, n.Title)
		}
		return out
	}
	assert.Equal(t, []string{"🌿 Eco Starter"}, titles("starter"))
	assert.ElementsMatch(t, []string{"🌿 Eco Starter", "♻️ Eco Beginner"}, titles("beginner"))
	assert.Empty(t, titles("between"))
	assert.Equal(t, []string{"🏆 Eco Warrior"}, titles("warrior"))
	assert.Empty(t, titles("below"))
}

func TestCheckMilestonesIdempotentWithinCooldown(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := newMemStore()
	store.addUser("u1", 75, "", now)
	notifier, _ := newTestNotifier(store, now)

	first, err := notifier.CheckMilestones(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := notifier.CheckMilestones(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second)

	// After the cooldown the same milestone may be sent again
	notifier.now = fixedClock(now.Add(MilestoneCooldown + time.Minute))
	third, err := notifier.CheckMilestones(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, third)
	assert.Len(t, store.notificationsFor("u1"), 2)
}

func TestCheckMilestonesStorageFailure(t *testing.T) {
	store := newMemStore()
	store.failWith = apperr.Storage("list users", errors.New("timeout"))
	notifier, _ := newTestNotifier(store, time.Now())

	_, err := notifier.CheckMilestones(context.Background())
	assert.Equal(t, apperr.KindStorageUnavailable, apperr.KindOf(err))
}

func TestSendRewardAlertsCapsListedRewards(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := newMemStore()
	store.addUser("rich", 600, "", now)
	for i, points := range []int{500, 50, 300, 100, 150} {
		store.addReward(fmt.Sprintf("r%d", i), fmt.Sprintf("Reward %d", points), points)
	}
	notifier, _ := newTestNotifier(store, now)

	result, err := notifier.SendRewardAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.NotificationsSent)
	assert.Equal(t, 1, result.EligibleUsers)

	notifications := store.notificationsFor("rich")
	require.Len(t, notifications, 1)
	msg := notifications[0].Message
	assert.Equal(t, models.NotificationReward, notifications[0].Type)
	assert.True(t, strings.HasPrefix(msg, "Great news! You have 600 points and can redeem:"))
	assert.Contains(t, msg, "• Reward 50 (50 pts)\n• Reward 100 (100 pts)\n• Reward 150 (150 pts)")
	assert.NotContains(t, msg, "Reward 300")
	assert.True(t, strings.HasSuffix(msg, "...and 2 more rewards!"))
}

func TestSendRewardAlertsSuppression(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := newMemStore()
	store.addUser("u1", 200, "", now)
	store.addUser("poor", 20, "", now)
	store.addReward("cheap", "Coffee", 50)
	notifier, _ := newTestNotifier(store, now)

	result, err := notifier.SendRewardAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.NotificationsSent)

	result, err = notifier.SendRewardAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.NotificationsSent)

	notifier.now = fixedClock(now.Add(RewardAlertCooldown + time.Hour))
	result, err = notifier.SendRewardAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.NotificationsSent)
	assert.Empty(t, store.notificationsFor("poor"))
}

func TestSendRewardAlertsSkipsRecentlyRedeemed(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := newMemStore()
	store.addUser("u1", 200, "", now)
	store.addReward("cheap", "Coffee", 50)
	store.redemptions = append(store.redemptions, models.RewardRedemption{
		ID: "x", UserID: "u1", RewardID: "cheap", PointsUsed: 50,
		Status: models.RedemptionCompleted, RedemptionDate: now.Add(-24 * time.Hour).Unix(),
	})
	notifier, _ := newTestNotifier(store, now)

	result, err := notifier.SendRewardAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.NotificationsSent)
	assert.Equal(t, 0, result.EligibleUsers)
}

func TestSendRewardAlertsNoRewards(t *testing.T) {
	store := newMemStore()
	store.addUser("u1", 1000, "", time.Now())
	notifier, _ := newTestNotifier(store, time.Now())

	result, err := notifier.SendRewardAlerts(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.NotificationsSent)
}

func TestSendDisposalReminders(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := newMemStore()
	store.addUser("lapsed", 40, "", now.Add(-10*24*time.Hour))
	store.addUser("recent", 40, "", now)
	store.addUser("gone", 40, "", now.AddDate(0, -2, 0))
	store.addUser("zero", 0, "", now.Add(-10*24*time.Hour))
	store.scans = append(store.scans, models.WasteScan{UserID: "recent", ScanDate: now.Add(-time.Hour).Unix()})
	notifier, _ := newTestNotifier(store, now)

	sent, err := notifier.SendDisposalReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, store.notificationsFor("lapsed"), 1)
	assert.Equal(t, models.NotificationReminder, store.notificationsFor("lapsed")[0].Type)

	sent, err = notifier.SendDisposalReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}

func TestSendFullBinAlerts(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := newMemStore()
	store.addBin("full", "Central Park", 40.78, -73.97, models.CapacityFull, "Manhattan")
	store.addBin("high", "City Hall", 40.71, -74.00, models.CapacityHigh, "Manhattan")
	store.addBin("ok", "Queens Center", 40.72, -73.79, models.CapacityLow, "Queens")
	store.addUser("local", 10, "Manhattan", now)
	store.addUser("stale", 10, "Manhattan", now.AddDate(0, 0, -30))
	store.addUser("queens", 10, "Queens", now)
	notifier, _ := newTestNotifier(store, now)

	result, err := notifier.SendFullBinAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.BinsAlerted)
	assert.Equal(t, 2, result.NotificationsSent)
	assert.Len(t, store.notificationsFor("local"), 2)
	assert.Empty(t, store.notificationsFor("stale"))
	assert.Empty(t, store.notificationsFor("queens"))

	// Identical alert is suppressed for a day
	result, err = notifier.SendFullBinAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.NotificationsSent)

	notifier.now = fixedClock(now.Add(BinAlertCooldown + time.Minute))
	result, err = notifier.SendFullBinAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.NotificationsSent)
}

func TestNotifyNearbyBins(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := newMemStore()
	store.addUser("u1", 0, "", now)
	origin := Location{Latitude: 40.7580, Longitude: -73.9855}
	for i := 0; i < 6; i++ {
		store.addBin(fmt.Sprintf("b%d", i), fmt.Sprintf("Spot %d", i), origin.Latitude+float64(i)*0.001, origin.Longitude, models.CapacityLow, "Manhattan")
	}
	store.addBin("full", "Full Spot", origin.Latitude, origin.Longitude, models.CapacityFull, "Manhattan")
	store.addBin("far", "Far Spot", 41.5, -73.9855, models.CapacityEmpty, "Upstate")
	notifier, _ := newTestNotifier(store, now)

	result, err := notifier.NotifyNearbyBins(context.Background(), "u1", origin, 0)
	require.NoError(t, err)
	assert.True(t, result.NotificationSent)
	assert.Equal(t, NearbyBinsLimit, result.NearbyBinsCount)
	assert.Equal(t, "b0", result.Bins[0].ID)

	notifications := store.notificationsFor("u1")
	require.Len(t, notifications, 1)
	assert.True(t, strings.HasPrefix(notifications[0].Message, "Found 5 smart bins near you:"))
	assert.True(t, strings.HasSuffix(notifications[0].Message, "...and 2 more nearby!"))
	assert.NotContains(t, notifications[0].Message, "Full Spot")
}

func TestNotifyNearbyBinsNoneInRange(t *testing.T) {
	store := newMemStore()
	store.addUser("u1", 0, "", time.Now())
	notifier, _ := newTestNotifier(store, time.Now())

	result, err := notifier.NotifyNearbyBins(context.Background(), "u1", Location{Latitude: 10, Longitude: 10}, 1)
	require.NoError(t, err)
	assert.False(t, result.NotificationSent)
	assert.Empty(t, store.notificationsFor("u1"))

	_, err = notifier.NotifyNearbyBins(context.Background(), "u1", Location{Latitude: 95, Longitude: 10}, 1)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestSendValidation(t *testing.T) {
	store := newMemStore()
	notifier, _ := newTestNotifier(store, time.Now())
	ctx := context.Background()

	_, err := notifier.Send(ctx, []string{"u1"}, "", "body", "")
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = notifier.Send(ctx, nil, "title", "body", "")
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = notifier.Send(ctx, []string{"u1"}, "title", "body", "spam")
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	result, err := notifier.Send(ctx, []string{"u1", "u2"}, "title", "body", "")
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, models.NotificationInfo, store.notifications[0].Type)
}

func TestBroadcastFilters(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := newMemStore()
	store.addUser("m1", 0, "Manhattan", now)
	store.addUser("m2", 0, "Manhattan", now.AddDate(0, -3, 0))
	store.addUser("q1", 0, "Queens", now)
	notifier, _ := newTestNotifier(store, now)
	ctx := context.Background()

	result, err := notifier.Broadcast(ctx, BroadcastInput{Title: "Hello", Message: "World"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.UsersNotified)

	region := "Manhattan"
	result, err = notifier.Broadcast(ctx, BroadcastInput{Title: "Hi", Message: "Manhattan", Type: models.NotificationAlert, Region: &region, ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.UsersNotified)
	assert.Len(t, store.notificationsFor("m1"), 2)
	assert.Len(t, store.notificationsFor("m2"), 1)
}

func TestNotifyBestEffortSwallowsFailures(t *testing.T) {
	store := newMemStore()
	store.failNotifications = apperr.Storage("insert notification", errors.New("disk full"))
	notifier, deliverer := newTestNotifier(store, time.Now())

	assert.NotPanics(t, func() {
		notifier.NotifyBestEffort(context.Background(), "u1", "Title", "Message", models.NotificationInfo)
	})
	assert.Empty(t, deliverer.delivered)
}
