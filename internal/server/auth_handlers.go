package server

import (
	"github.com/ChakCage/Borlas/internal/models"
	"github.com/ChakCage/Borlas/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/auth/signup
// @Summary User signup
// @Description Register a new user account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,password=string} true "Signup request"
// @Success 201 {object} object{user=models.User}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		profileRequest
	}
	if err := parseBody(c, &req); err != nil {
		return RespondWithError(c, err)
	}

	profile, err := req.profileRequest.toProfile()
	if err != nil {
		return RespondWithError(c, err)
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Profile:  profile,
	})
	if err != nil {
		return RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate by username or email and return access and refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{login=string,password=string} true "Login credentials"
// @Success 200 {object} auth.TokenPair
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Login    string `json:"login"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return RespondWithError(c, err)
	}

	login := req.Login
	if login == "" {
		login = req.Username
	}
	if login == "" {
		login = req.Email
	}
	if login == "" || req.Password == "" {
		return RespondWithError(c, models.NewValidationError("login and password are required"))
	}

	pair, err := s.sessions.Login(c.UserContext(), login, req.Password)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(pair)
}

// Refresh handles POST /api/auth/refresh
// @Summary Refresh access token
// @Description Exchange a refresh token for a new access token. The refresh token is not rotated.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{refresh_token=string} true "Refresh token"
// @Success 200 {object} auth.TokenPair
// @Failure 401 {object} ErrorResponse
// @Router /auth/refresh [post]
func (s *Server) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := parseBody(c, &req); err != nil {
		return RespondWithError(c, err)
	}

	pair, err := s.sessions.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return RespondWithError(c, err)
	}
	return c.JSON(pair)
}
