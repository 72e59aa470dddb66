// Package lifecycle implements the two-state soft-delete lifecycle shared by
// posts and comments, and the active/deleted listing views.
package lifecycle

import (
	"strings"
	"time"

	"github.com/ChakCage/Borlas/internal/auth"
	"github.com/ChakCage/Borlas/internal/models"
)

// State is the lifecycle state of a resource.
type State string

const (
	Active  State = "active"
	Deleted State = "deleted"
)

// Resource is an owned record whose deletion is a timestamp.
type Resource interface {
	auth.Owned
	// DeletedTime returns nil while the resource is active.
	DeletedTime() *time.Time
	MarkDeleted(at time.Time)
	ApplyEdit(content string, at time.Time)
}

// StateOf derives the state from the deletion timestamp alone.
func StateOf(r Resource) State {
	if r.DeletedTime() != nil {
		return Deleted
	}
	return Active
}

// Outcome says what a mutation did to a resource.
type Outcome string

const (
	// Edited means the content changed and EditedAt was set.
	Edited Outcome = "edited"
	// SoftDeleted means the resource moved from Active to Deleted.
	SoftDeleted Outcome = "deleted"
	// AlreadyDeleted means a delete hit a Deleted resource; nothing changed.
	AlreadyDeleted Outcome = "already_deleted"
)

// Changed reports whether the outcome must be persisted.
func (o Outcome) Changed() bool {
	return o == Edited || o == SoftDeleted
}

// ErrResourceDeleted is returned when content edits target a deleted resource.
var ErrResourceDeleted = &models.AppError{Code: models.CodeNotFound, Message: "resource has been deleted"}

// Guard decides whether an identity may mutate a resource.
type Guard interface {
	MayMutate(actor *auth.Identity, resource auth.Owned) bool
}

// Machine applies lifecycle transitions after an ownership check.
type Machine struct {
	guard Guard
	now   func() time.Time
}

// NewMachine returns a Machine using guard and the now clock. A nil clock
// means time.Now.
func NewMachine(guard Guard, now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{guard: guard, now: now}
}

// IsBlank reports whether content is empty or whitespace only.
func IsBlank(content string) bool {
	return strings.TrimSpace(content) == ""
}

// Authorize separates an absent identity (models.ErrUnauthenticated) from
// a present identity that does not own r (models.ErrForbidden).
func (m *Machine) Authorize(actor *auth.Identity, r Resource) error {
	if actor == nil {
		return models.NewUnauthenticatedError("authentication required")
	}
	if !m.guard.MayMutate(actor, r) {
		return models.NewForbiddenError("only the owner may modify this resource")
	}
	return nil
}

// Update edits r with content, or soft-deletes it when content is blank.
// Exactly one of the two happens per call.
func (m *Machine) Update(actor *auth.Identity, r Resource, content string) (Outcome, error) {
	if err := m.Authorize(actor, r); err != nil {
		return "", err
	}
	if IsBlank(content) {
		return m.softDelete(r), nil
	}
	if StateOf(r) == Deleted {
		return "", ErrResourceDeleted
	}
	r.ApplyEdit(content, m.now())
	return Edited, nil
}

// Delete soft-deletes r. Content is left untouched, and deleting a deleted
// resource keeps its original timestamp.
func (m *Machine) Delete(actor *auth.Identity, r Resource) (Outcome, error) {
	if err := m.Authorize(actor, r); err != nil {
		return "", err
	}
	return m.softDelete(r), nil
}

func (m *Machine) softDelete(r Resource) Outcome {
	if StateOf(r) == Deleted {
		return AlreadyDeleted
	}
	r.MarkDeleted(m.now())
	return SoftDeleted
}
