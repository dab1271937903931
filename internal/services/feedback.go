package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"binsmart-backend/internal/apperr"
	"binsmart-backend/internal/models"

	"github.com/google/uuid"
)

// FeedbackStore persists complaints and ratings
type FeedbackStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetBin(ctx context.Context, id string) (*models.Bin, error)
	InsertComplaint(ctx context.Context, c *models.Complaint) error
	ResolveComplaint(ctx context.Context, id string, at time.Time) (*models.Complaint, error)
	ListComplaints(ctx context.Context, userID *string) ([]models.Complaint, error)
	UpsertRating(ctx context.Context, r *models.Rating) error
}

// FeedbackService handles complaints and ratings on bins. Confirmation
// notifications are best-effort and never fail the primary write.
type FeedbackService struct {
	store    FeedbackStore
	notifier *EligibilityNotifier
	now      func() time.Time
}

func NewFeedbackService(store FeedbackStore, notifier *EligibilityNotifier) *FeedbackService {
	return &FeedbackService{store: store, notifier: notifier, now: time.Now}
}

func (s *FeedbackService) SubmitComplaint(ctx context.Context, req models.ComplaintRequest) (*models.Complaint, error) {
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.BinID) == "" || req.ComplaintType == "" {
		return nil, apperr.Invalid("user_id, bin_id and complaint_type are required")
	}
	if !models.ComplaintTypes[req.ComplaintType] {
		return nil, apperr.Invalid("invalid complaint type %q", req.ComplaintType)
	}

	if _, err := s.store.GetUser(ctx, req.UserID); err != nil {
		return nil, err
	}
	bin, err := s.store.GetBin(ctx, req.BinID)
	if err != nil {
		return nil, err
	}

	complaint := &models.Complaint{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		BinID:         bin.ID,
		ComplaintType: req.ComplaintType,
		Description:   req.Description,
		Status:        models.ComplaintOpen,
		CreatedAt:     s.now().Unix(),
		LocationName:  bin.LocationName,
	}
	if err := s.store.InsertComplaint(ctx, complaint); err != nil {
		return nil, err
	}

	log.Printf("✅ [FEEDBACK] Complaint %s (%s) filed on bin %s by user %s", complaint.ID, complaint.ComplaintType, bin.ID, req.UserID)

	if s.notifier != nil {
		s.notifier.NotifyBestEffort(ctx, req.UserID,
			"Complaint Submitted",
			fmt.Sprintf("Your complaint about %s bin has been submitted and will be addressed soon.", req.ComplaintType),
			models.NotificationInfo)
	}
	return complaint, nil
}

func (s *FeedbackService) ResolveComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Invalid("complaint id is required")
	}

	complaint, err := s.store.ResolveComplaint(ctx, id, s.now())
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyBestEffort(ctx, complaint.UserID,
			"Complaint Resolved",
			fmt.Sprintf("Your complaint about %s has been resolved.", complaint.LocationName),
			models.NotificationInfo)
	}
	return complaint, nil
}

func (s *FeedbackService) ListComplaints(ctx context.Context, userID *string) ([]models.Complaint, error) {
	return s.store.ListComplaints(ctx, userID)
}

// SubmitRating records a 1-5 rating. A second rating of the same bin by the
// same user replaces the first.
func (s *FeedbackService) SubmitRating(ctx context.Context, req models.RatingRequest) (*models.Rating, error) {
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.BinID) == "" {
		return nil, apperr.Invalid("user_id and bin_id are required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperr.Invalid("rating must be between 1 and 5")
	}

	if _, err := s.store.GetUser(ctx, req.UserID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetBin(ctx, req.BinID); err != nil {
		return nil, err
	}

	rating := &models.Rating{
		UserID:    req.UserID,
		BinID:     req.BinID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: s.now().Unix(),
	}
	if err := s.store.UpsertRating(ctx, rating); err != nil {
		return nil, err
	}
	return rating, nil
}
