// Package notifications delivers lifecycle notifications to resource owners
// over Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ChakCage/Borlas/internal/events"

	"github.com/redis/go-redis/v9"
)

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// UserChannel is the pub/sub channel for one user's notifications.
func UserChannel(userID uint) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// Publish notifies the owner of the event's resource.
func (n *Notifier) Publish(ctx context.Context, e events.Event) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return n.PublishUser(ctx, e.OwnerID, string(payload))
}
