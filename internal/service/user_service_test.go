package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ChakCage/Borlas/internal/auth"
	"github.com/ChakCage/Borlas/internal/models"
	"github.com/ChakCage/Borlas/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(repo *userRepoStub) (*UserService, auth.PasswordHasher) {
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	return NewUserService(repo, hasher, newTestClock().Now), hasher
}

func TestUserService_Register(t *testing.T) {
	t.Parallel()
	repo := noopUserRepo()
	var stored *models.User
	repo.createFn = func(_ context.Context, u *models.User) error {
		u.ID = 1
		stored = u
		return nil
	}
	svc, hasher := newUserService(repo)

	bio := "curious"
	user, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@x.com",
		Password: "wonderland",
		Profile:  validation.Profile{Bio: &bio},
	})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, uint(1), user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "curious", user.Bio)
	assert.NotEqual(t, "wonderland", stored.Password)
	assert.True(t, hasher.Verify("wonderland", stored.Password))
}

func TestUserService_Register_Conflict(t *testing.T) {
	t.Parallel()

	t.Run("username taken", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.existsByUsernameFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
		svc, _ := newUserService(repo)
		_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "a@x.com", Password: "secret1"})
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("email taken", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.existsByEmailFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
		svc, _ := newUserService(repo)
		_, err := svc.Register(context.Background(), RegisterInput{Username: "alice2", Email: "alice@x.com", Password: "secret1"})
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("unique index race", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.createFn = func(_ context.Context, _ *models.User) error {
			return models.NewConflictError("username or email already registered")
		}
		svc, _ := newUserService(repo)
		_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "alice@x.com", Password: "secret1"})
		assert.ErrorIs(t, err, models.ErrConflict)
	})
}

func TestUserService_Register_ValidationRunsFirst(t *testing.T) {
	t.Parallel()
	repo := noopUserRepo()
	repo.existsByUsernameFn = func(_ context.Context, _ string) (bool, error) {
		t.Fatal("store must not be consulted for invalid input")
		return false, nil
	}
	svc, _ := newUserService(repo)

	cases := []RegisterInput{
		{Username: "al", Email: "a@x.com", Password: "secret1"},
		{Username: "Alice", Email: "a@x.com", Password: "secret1"},
		{Username: "alice", Email: "not-an-email", Password: "secret1"},
		{Username: "alice", Email: "a@x.com", Password: "short"},
	}
	for _, in := range cases {
		_, err := svc.Register(context.Background(), in)
		assert.ErrorIs(t, err, models.ErrValidation, "%+v", in)
	}
}

func TestUserService_Register_StoreErrorPropagates(t *testing.T) {
	t.Parallel()
	repoErr := errors.New("db down")
	repo := noopUserRepo()
	repo.existsByEmailFn = func(_ context.Context, _ string) (bool, error) { return false, repoErr }
	svc, _ := newUserService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Email: "alice@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, repoErr)
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()
	repo := noopUserRepo()
	existing := &models.User{ID: 1, Username: "alice", Bio: "old"}
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.User, error) { return existing, nil }
	var updated *models.User
	repo.updateFn = func(_ context.Context, u *models.User) error { updated = u; return nil }
	svc, _ := newUserService(repo)

	gender := models.GenderFemale
	birth := time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)
	user, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
		UserID:  1,
		Profile: validation.Profile{Gender: &gender, BirthDate: &birth},
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "old", user.Bio, "absent fields are unchanged")
	assert.Equal(t, models.GenderFemale, user.Gender)
	require.NotNil(t, user.BirthDate)
	assert.True(t, birth.Equal(*user.BirthDate))

	future := time.Date(2999, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Profile: validation.Profile{BirthDate: &future}})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUserService_ResolveOwner(t *testing.T) {
	t.Parallel()
	repo := noopUserRepo()
	repo.findByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		if username == "alice" {
			return &models.User{ID: 1, Username: "alice"}, nil
		}
		return nil, models.NewNotFoundError("User", username)
	}
	svc, _ := newUserService(repo)
	ctx := context.Background()

	id, err := svc.ResolveOwner(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, id)

	id, err = svc.ResolveOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint(1), id)

	_, err = svc.ResolveOwner(ctx, "nobody")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUserService_ListUsers_BoundsPaging(t *testing.T) {
	t.Parallel()
	repo := noopUserRepo()
	var gotLimit, gotOffset int
	repo.listFn = func(_ context.Context, limit, offset int) ([]models.User, error) {
		gotLimit, gotOffset = limit, offset
		return nil, nil
	}
	svc, _ := newUserService(repo)

	_, err := svc.ListUsers(context.Background(), 500, -3)
	require.NoError(t, err)
	assert.Equal(t, 20, gotLimit)
	assert.Equal(t, 0, gotOffset)
}
