package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"tournament-bot/internal/pkg/session"
)

// BroadcastService drives the admin's direct-message wizard: a single reply
// of the form "user_id message text" delivered through the messaging channel.
type BroadcastService struct {
	sessions  *session.Tracker
	messenger Messenger
}

// NewBroadcastService creates a new BroadcastService instance.
func NewBroadcastService(sessions *session.Tracker, messenger Messenger) *BroadcastService {
	return &BroadcastService{
		sessions:  sessions,
		messenger: messenger,
	}
}

// Begin opens the wizard for the admin.
func (s *BroadcastService) Begin(userID int64) {
	s.sessions.Set(userID, &session.State{Step: session.StepBroadcastTarget})
}

// BroadcastResult describes the outcome of a broadcast reply.
type BroadcastResult struct {
	// Retry means the reply was malformed and the wizard stays open.
	Retry bool

	TargetID int64
}

// Submit consumes the admin's "user_id message text" reply.
// An unparsable target id keeps the wizard open; a delivery failure closes
// it and is reported to the caller.
func (s *BroadcastService) Submit(ctx context.Context, adminID int64, text string) (*BroadcastResult, error) {
	state := s.sessions.Get(adminID)
	if state == nil || state.Step != session.StepBroadcastTarget {
		return nil, nil
	}

	targetID, message, ok := parseBroadcastTarget(text)
	if !ok {
		return &BroadcastResult{Retry: true}, nil
	}

	s.sessions.Clear(adminID)

	if err := s.messenger.SendText(ctx, targetID, message); err != nil {
		return &BroadcastResult{TargetID: targetID}, fmt.Errorf("failed to deliver message to %d: %w", targetID, err)
	}

	return &BroadcastResult{TargetID: targetID}, nil
}

// parseBroadcastTarget splits "user_id message text" into a numeric target
// id and the message body.
func parseBroadcastTarget(text string) (int64, string, bool) {
	parts := strings.SplitN(text, " ", 2)
	if len(parts) < 2 {
		return 0, "", false
	}

	targetID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", false
	}

	return targetID, parts[1], true
}
