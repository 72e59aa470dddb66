// Package service contains business logic orchestrating repositories, the
// ownership guard and the soft-delete lifecycle.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/ChakCage/Borlas/internal/auth"
	"github.com/ChakCage/Borlas/internal/models"
	"github.com/ChakCage/Borlas/internal/repository"
	"github.com/ChakCage/Borlas/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
	hasher   auth.PasswordHasher
	now      func() time.Time
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Profile  validation.Profile
}

type UpdateProfileInput struct {
	UserID  uint
	Profile validation.Profile
}

func NewUserService(userRepo repository.UserRepository, hasher auth.PasswordHasher, now func() time.Time) *UserService {
	if now == nil {
		now = time.Now
	}
	return &UserService{userRepo: userRepo, hasher: hasher, now: now}
}

// Register validates the input, rejects taken usernames and emails with
// models.ErrConflict, and stores the user with a hashed password.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if err := validation.ValidateSignup(in.Username, in.Email, in.Password); err != nil {
		return nil, err
	}
	if err := validation.ValidateProfile(in.Profile, s.now()); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewConflictError("username already taken")
	}
	taken, err = s.userRepo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewConflictError("email already registered")
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hashed,
		Role:     models.RoleUser,
	}
	applyProfile(user, in.Profile)

	// The unique indexes still catch a concurrent registration.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.userRepo.List(ctx, limit, offset)
}

// UpdateProfile changes the provided profile fields. The username is never
// editable.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if err := validation.ValidateProfile(in.Profile, s.now()); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	applyProfile(user, in.Profile)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ResolveOwner maps an owner username onto a listing scope. An empty
// username means every owner.
func (s *UserService) ResolveOwner(ctx context.Context, username string) (uint, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, nil
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

func applyProfile(user *models.User, p validation.Profile) {
	if p.Bio != nil {
		user.Bio = *p.Bio
	}
	if p.AvatarURL != nil {
		user.AvatarURL = *p.AvatarURL
	}
	if p.BirthDate != nil {
		bd := *p.BirthDate
		user.BirthDate = &bd
	}
	if p.Gender != nil {
		user.Gender = *p.Gender
	}
}
