package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"binsmart-backend/internal/apperr"
	"binsmart-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeedback(store *memStore, now time.Time) *FeedbackService {
	notifier, _ := newTestNotifier(store, now)
	s := NewFeedbackService(store, notifier)
	s.now = fixedClock(now)
	return s
}

func TestSubmitComplaint(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := newMemStore()
	store.addUser("u1", 0, "Manhattan", now)
	store.addBin("b1", "Central Park", 40.78, -73.97, models.CapacityFull, "Manhattan")
	svc := newTestFeedback(store, now)

	complaint, err := svc.SubmitComplaint(context.Background(), models.ComplaintRequest{
		UserID: "u1", BinID: "b1", ComplaintType: "full", Description: "overflowing",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintOpen, complaint.Status)
	assert.Equal(t, "Central Park", complaint.LocationName)

	notifications := store.notificationsFor("u1")
	require.Len(t, notifications, 1)
	assert.Equal(t, "Complaint Submitted", notifications[0].Title)
}

func TestSubmitComplaintValidation(t *testing.T) {
	store := newMemStore()
	store.addUser("u1", 0, "", time.Now())
	svc := newTestFeedback(store, time.Now())
	ctx := context.Background()

	_, err := svc.SubmitComplaint(ctx, models.ComplaintRequest{UserID: "u1", BinID: "b1", ComplaintType: "smelly"})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = svc.SubmitComplaint(ctx, models.ComplaintRequest{UserID: "u1", BinID: "missing", ComplaintType: "broken"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Empty(t, store.complaints)
}

func TestComplaintSurvivesNotificationFailure(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := newMemStore()
	store.addUser("u1", 0, "", now)
	store.addBin("b1", "City Hall", 40.71, -74.00, models.CapacityLow, "Manhattan")
	store.failNotifications = apperr.Storage("insert notification", errors.New("connection reset"))
	svc := newTestFeedback(store, now)

	complaint, err := svc.SubmitComplaint(context.Background(), models.ComplaintRequest{UserID: "u1", BinID: "b1", ComplaintType: "broken"})
	require.NoError(t, err)
	assert.Contains(t, store.complaints, complaint.ID)

	resolved, err := svc.ResolveComplaint(context.Background(), complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, now.Unix(), *resolved.ResolvedAt)
}

func TestResolveComplaintNotifiesOwner(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := newMemStore()
	store.addUser("u1", 0, "", now)
	store.addBin("b1", "City Hall", 40.71, -74.00, models.CapacityLow, "Manhattan")
	svc := newTestFeedback(store, now)

	complaint, err := svc.SubmitComplaint(context.Background(), models.ComplaintRequest{UserID: "u1", BinID: "b1", ComplaintType: "dirty"})
	require.NoError(t, err)

	_, err = svc.ResolveComplaint(context.Background(), complaint.ID)
	require.NoError(t, err)

	notifications := store.notificationsFor("u1")
	require.Len(t, notifications, 2)
	assert.Equal(t, "Your complaint about City Hall has been resolved.", notifications[1].Message)

	_, err = svc.ResolveComplaint(context.Background(), "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSubmitRating(t *testing.T) {
	store := newMemStore()
	store.addUser("u1", 0, "", time.Now())
	store.addBin("b1", "Riverside", 40.78, -73.97, models.CapacityLow, "Manhattan")
	svc := newTestFeedback(store, time.Now())
	ctx := context.Background()

	for _, bad := range []int{0, 6, -1} {
		_, err := svc.SubmitRating(ctx, models.RatingRequest{UserID: "u1", BinID: "b1", Rating: bad})
		assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	}

	_, err := svc.SubmitRating(ctx, models.RatingRequest{UserID: "u1", BinID: "b1", Rating: 2})
	require.NoError(t, err)
	_, err = svc.SubmitRating(ctx, models.RatingRequest{UserID: "u1", BinID: "b1", Rating: 5, Comment: "fixed"})
	require.NoError(t, err)

	require.Len(t, store.ratings, 1)
	assert.Equal(t, 5, store.ratings["u1/b1"].Rating)
}
