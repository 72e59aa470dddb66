package lifecycle

import "fmt"

// Order is the creation-time ordering of a listing.
type Order string

const (
	NewestFirst Order = "desc"
	OldestFirst Order = "asc"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Scope limits a listing to one owner. The zero Scope means all owners.
type Scope struct {
	OwnerID uint
}

// AllOwners is the unscoped listing.
func AllOwners() Scope { return Scope{} }

// OwnedBy scopes a listing to ownerID.
func OwnedBy(ownerID uint) Scope { return Scope{OwnerID: ownerID} }

// IsAll reports whether the scope spans every owner.
func (s Scope) IsAll() bool { return s.OwnerID == 0 }

// Query selects one view (Active or Deleted) of the resources in a scope.
type Query struct {
	View   State
	Scope  Scope
	Order  Order
	Limit  int
	Offset int
}

// ParseOrder maps "asc"/"desc" (or empty) onto an Order.
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case "", NewestFirst:
		return NewestFirst, nil
	case OldestFirst:
		return OldestFirst, nil
	default:
		return "", fmt.Errorf("unknown order %q", s)
	}
}

// Normalize fills defaults: the active view, newest first, and a bounded page.
func (q Query) Normalize() Query {
	if q.View != Deleted {
		q.View = Active
	}
	if q.Order != OldestFirst {
		q.Order = NewestFirst
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// Matches reports whether r belongs in the query's view and scope.
func (q Query) Matches(r Resource) bool {
	if StateOf(r) != q.Normalize().View {
		return false
	}
	return q.Scope.IsAll() || r.OwnerID() == q.Scope.OwnerID
}
