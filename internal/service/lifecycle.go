package service

import (
	"context"
	"log/slog"

	"github.com/ChakCage/Borlas/internal/auth"
	"github.com/ChakCage/Borlas/internal/events"
	"github.com/ChakCage/Borlas/internal/lifecycle"
	"github.com/ChakCage/Borlas/internal/models"
	"github.com/ChakCage/Borlas/internal/observability"
)

// authorizeDeletedListing lets an identity read its own deleted items.
// Reading everyone's, or another owner's, requires the admin role.
func authorizeDeletedListing(actor *auth.Identity, scope lifecycle.Scope) error {
	if actor == nil {
		return models.NewUnauthenticatedError("authentication required to list deleted items")
	}
	if actor.IsAdmin() {
		return nil
	}
	if scope.IsAll() || scope.OwnerID != actor.ID {
		return models.NewForbiddenError("only administrators may list other owners' deleted items")
	}
	return nil
}

func requireActor(actor *auth.Identity) error {
	if actor == nil {
		return models.NewUnauthenticatedError("authentication required")
	}
	return nil
}

// eventAction names the event emitted for a persisted outcome.
func eventAction(o lifecycle.Outcome) string {
	if o == lifecycle.Edited {
		return events.ActionEdited
	}
	return events.ActionDeleted
}

func recordTransition(ctx context.Context, resource string, id uint, outcome lifecycle.Outcome, err error) {
	label := string(outcome)
	if err != nil {
		label = models.CodeOf(err)
	}
	observability.LifecycleTransitions.WithLabelValues(resource, label).Inc()

	if err == nil && outcome.Changed() {
		observability.Logger.InfoContext(ctx, "resource transition",
			slog.String("resource", resource),
			slog.Uint64("id", uint64(id)),
			slog.String("outcome", label),
		)
	}
}
