package server

import (
	"github.com/ChakCage/Borlas/internal/auth"
	"github.com/ChakCage/Borlas/internal/lifecycle"
	"github.com/ChakCage/Borlas/internal/middleware"
	"github.com/ChakCage/Borlas/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageLimit   = 20
	maxPaginationLimit = 100
)

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{Limit: limit, Offset: offset}
}

// parseID extracts a route parameter as a positive uint.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("Invalid " + param)
	}
	return uint(id), nil
}

// parseListQuery reads ?owner=&order=&limit=&offset= into a lifecycle query.
// An unknown owner is NotFound; no owner means every owner.
func (s *Server) parseListQuery(c *fiber.Ctx) (lifecycle.Query, error) {
	order, err := lifecycle.ParseOrder(c.Query("order"))
	if err != nil {
		return lifecycle.Query{}, models.NewValidationError("order must be asc or desc")
	}

	ownerID, err := s.userService.ResolveOwner(c.UserContext(), c.Query("owner"))
	if err != nil {
		return lifecycle.Query{}, err
	}

	page := parsePagination(c, defaultPageLimit)
	return lifecycle.Query{
		Scope:  lifecycle.OwnedBy(ownerID),
		Order:  order,
		Limit:  page.Limit,
		Offset: page.Offset,
	}, nil
}

// currentIdentity returns the caller set by the auth middleware, or nil.
func currentIdentity(c *fiber.Ctx) *auth.Identity {
	return middleware.IdentityFrom(c)
}

func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

// ownScope narrows a listing to the caller when no owner was requested.
// Administrators keep the unscoped view.
func ownScope(c *fiber.Ctx) lifecycle.Scope {
	if id := currentIdentity(c); id != nil && !id.IsAdmin() {
		return lifecycle.OwnedBy(id.ID)
	}
	return lifecycle.AllOwners()
}
