package server

import (
	"time"

	"github.com/ChakCage/Borlas/internal/models"
	"github.com/ChakCage/Borlas/internal/service"
	"github.com/ChakCage/Borlas/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// profileRequest is the editable profile part of signup and profile bodies.
type profileRequest struct {
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
	BirthDate *string `json:"birth_date"`
	Gender    *string `json:"gender"`
}

func (r profileRequest) toProfile() (validation.Profile, error) {
	p := validation.Profile{Bio: r.Bio, AvatarURL: r.AvatarURL, Gender: r.Gender}
	if r.BirthDate != nil && *r.BirthDate != "" {
		t, err := time.Parse(time.DateOnly, *r.BirthDate)
		if err != nil {
			return validation.Profile{}, models.NewValidationError("birth_date must be YYYY-MM-DD")
		}
		p.BirthDate = &t
	}
	return p, nil
}

// GetMyProfile handles GET /api/users/me
// @Summary Get current user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetUser(c.UserContext(), currentIdentity(c).ID)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PATCH /api/users/me
// @Summary Update current user profile
// @Description Update bio, avatar URL, birth date or gender. The username cannot change.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Router /users/me [patch]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := parseBody(c, &req); err != nil {
		return RespondWithError(c, err)
	}
	profile, err := req.toProfile()
	if err != nil {
		return RespondWithError(c, err)
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:  currentIdentity(c).ID,
		Profile: profile,
	})
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(user)
}

// GetAllUsers handles GET /api/users
// @Summary List users
// @Tags users
// @Produce json
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {array} models.User
// @Router /users [get]
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageLimit)
	users, err := s.userService.ListUsers(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(users)
}

// GetUserProfile handles GET /api/users/:id
// @Summary Get user profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return RespondWithError(c, err)
	}
	user, err := s.userService.GetUser(c.UserContext(), id)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(user)
}
