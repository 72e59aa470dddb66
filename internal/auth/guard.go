package auth

import (
	"slices"

	"github.com/ChakCage/Borlas/internal/models"
)

// Identity is an authenticated caller.
type Identity struct {
	ID       uint
	Username string
	Roles    []string
}

// HasRole reports whether the identity was granted role.
func (i *Identity) HasRole(role string) bool {
	return i != nil && slices.Contains(i.Roles, role)
}

// IsAdmin reports whether the identity holds the admin role.
func (i *Identity) IsAdmin() bool {
	return i.HasRole(models.RoleAdmin)
}

// IdentityFromUser builds the identity of a stored user.
func IdentityFromUser(u *models.User) *Identity {
	return &Identity{ID: u.ID, Username: u.Username, Roles: u.Roles()}
}

// Owned is anything with a single owning identity.
type Owned interface {
	OwnerID() uint
}

// OwnershipGuard decides whether an identity may mutate a resource.
type OwnershipGuard struct{}

// NewOwnershipGuard returns an OwnershipGuard.
func NewOwnershipGuard() *OwnershipGuard {
	return &OwnershipGuard{}
}

// MayMutate is true only when actor is present and owns resource. Roles do
// not grant mutation rights.
func (*OwnershipGuard) MayMutate(actor *Identity, resource Owned) bool {
	if actor == nil || resource == nil || actor.ID == 0 {
		return false
	}
	return actor.ID == resource.OwnerID()
}
