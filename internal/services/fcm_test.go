package services

import (
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
)

func TestBuildMulticast(t *testing.T) {
	msg := buildMulticast([]string{"a", "b"}, "Rewards Available!", "body", map[string]string{"type": "reward"})

	assert.Equal(t, []string{"a", "b"}, msg.Tokens)
	assert.Equal(t, "Rewards Available!", msg.Notification.Title)
	assert.Equal(t, "reward", msg.Data["type"])
	assert.Equal(t, "high", msg.Android.Priority)
}

func TestStaleTokensIgnoresSuccessAndTransientFailures(t *testing.T) {
	responses := []*messaging.SendResponse{
		{Success: true, MessageID: "m1"},
		{Success: false, Error: errors.New("deadline exceeded")},
		nil,
	}
	assert.Empty(t, staleTokens([]string{"a", "b", "c"}, responses))
}
