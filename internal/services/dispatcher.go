package services

import (
	"context"
	"log"

	"binsmart-backend/internal/models"
)

// Deliverer pushes an already stored notification to live channels.
// Delivery is best-effort and never fails the caller.
type Deliverer interface {
	Deliver(ctx context.Context, n models.Notification)
}

// LiveSender delivers to connected websocket clients
type LiveSender interface {
	SendToUser(userID string, data interface{})
}

// PushSender delivers to registered device tokens. It returns the tokens the
// push service reported as no longer registered.
type PushSender interface {
	SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) (stale []string, err error)
}

// TokenSource looks up and prunes a user's device tokens
type TokenSource interface {
	ListFCMTokens(ctx context.Context, userID string) ([]string, error)
	DeleteFCMTokens(ctx context.Context, tokens []string) error
}

// Dispatcher fans a notification out to the websocket hub and FCM.
// Either channel may be nil.
type Dispatcher struct {
	live   LiveSender
	push   PushSender
	tokens TokenSource
}

func NewDispatcher(live LiveSender, push PushSender, tokens TokenSource) *Dispatcher {
	return &Dispatcher{live: live, push: push, tokens: tokens}
}

func (d *Dispatcher) Deliver(ctx context.Context, n models.Notification) {
	if d.live != nil {
		d.live.SendToUser(n.UserID, map[string]interface{}{
			"type": "notification",
			"data": n,
		})
	}

	if d.push == nil || d.tokens == nil {
		return
	}

	tokens, err := d.tokens.ListFCMTokens(ctx, n.UserID)
	if err != nil {
		log.Printf("⚠️  [DISPATCH] Failed to load FCM tokens for user %s: %v", n.UserID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	data := map[string]string{
		"type":            n.Type,
		"notification_id": n.ID,
	}
	stale, err := d.push.SendToTokens(ctx, tokens, n.Title, n.Message, data)
	if err != nil {
		log.Printf("⚠️  [DISPATCH] Push delivery failed for user %s: %v", n.UserID, err)
	}
	if len(stale) == 0 {
		return
	}
	if err := d.tokens.DeleteFCMTokens(ctx, stale); err != nil {
		log.Printf("⚠️  [DISPATCH] Failed to prune %d stale tokens for user %s: %v", len(stale), n.UserID, err)
		return
	}
	log.Printf("🧹 [DISPATCH] Pruned %d stale tokens for user %s", len(stale), n.UserID)
}
