// Package events publishes resource lifecycle events to downstream consumers.
package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ChakCage/Borlas/internal/observability"
)

// Resource kinds.
const (
	ResourcePost    = "post"
	ResourceComment = "comment"
)

// Actions.
const (
	ActionCreated = "created"
	ActionEdited  = "edited"
	ActionDeleted = "deleted"
)

// Event describes one lifecycle transition of a post or comment.
type Event struct {
	Type       string    `json:"type"`
	Resource   string    `json:"resource"`
	ResourceID uint      `json:"resource_id"`
	OwnerID    uint      `json:"owner_id"`
	PostID     uint      `json:"post_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New builds an event whose Type is "<resource>.<action>".
func New(resource, action string, resourceID, ownerID uint, at time.Time) Event {
	return Event{
		Type:       resource + "." + action,
		Resource:   resource,
		ResourceID: resourceID,
		OwnerID:    ownerID,
		OccurredAt: at.UTC(),
	}
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Emit publishes e and logs, rather than returns, any failure.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		observability.EventPublishFailures.WithLabelValues(e.Type).Inc()
		observability.Logger.WarnContext(ctx, "event publish failed",
			slog.String("event_type", e.Type),
			slog.Uint64("resource_id", uint64(e.ResourceID)),
			slog.String("error", err.Error()),
		)
	}
}
