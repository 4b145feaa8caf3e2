// Package service provides business logic implementations.
package service

import "context"

// Messenger is the outbound side of the messaging channel used by workflows
// that push a plain text message to a user outside the current exchange
// (admin notifications, direct messages). The bot layer implements it.
type Messenger interface {
	SendText(ctx context.Context, userID int64, text string) error
}
