package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/ChakCage/Borlas/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	tests := []struct {
		username string
		wantErr  bool
	}{
		{"alice", false},
		{"bob_42", false},
		{"a-b", false},
		{strings.Repeat("a", 30), false},
		{"ab", true},
		{strings.Repeat("a", 31), true},
		{"Alice", true},
		{"al ice", true},
		{"alice!", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateUsername(tt.username)
		if tt.wantErr {
			assert.ErrorIs(t, err, models.ErrValidation, tt.username)
		} else {
			assert.NoError(t, err, tt.username)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateEmail("alice@x.com"))
	for _, bad := range []string{"", "alice", "Alice <alice@x.com>", "@x.com", "alice@"} {
		assert.ErrorIs(t, ValidateEmail(bad), models.ErrValidation, bad)
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidatePassword("secret"))
	assert.NoError(t, ValidatePassword(strings.Repeat("p", MaxPasswordBytes)))
	assert.ErrorIs(t, ValidatePassword("short"), models.ErrValidation)
	assert.ErrorIs(t, ValidatePassword(strings.Repeat("p", MaxPasswordBytes+1)), models.ErrValidation)
}

func TestValidateSignup_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateSignup("alice", "alice@x.com", "wonderland"))
	err := ValidateSignup("x", "not-an-email", "1")
	assert.ErrorContains(t, err, "username")
}

func TestValidateProfile(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	str := func(s string) *string { return &s }
	past := now.AddDate(-20, 0, 0)
	future := now.Add(time.Hour)

	assert.NoError(t, ValidateProfile(Profile{}, now))
	assert.NoError(t, ValidateProfile(Profile{
		Bio:       str("hello"),
		AvatarURL: str("https://cdn.example.com/a.png"),
		BirthDate: &past,
		Gender:    str(models.GenderFemale),
	}, now))
	assert.NoError(t, ValidateProfile(Profile{AvatarURL: str(""), Gender: str("")}, now))

	assert.Error(t, ValidateProfile(Profile{Bio: str(strings.Repeat("b", MaxBioLen+1))}, now))
	assert.Error(t, ValidateProfile(Profile{AvatarURL: str("ftp://x/y")}, now))
	assert.Error(t, ValidateProfile(Profile{AvatarURL: str("not a url")}, now))
	assert.Error(t, ValidateProfile(Profile{BirthDate: &future}, now))
	assert.Error(t, ValidateProfile(Profile{Gender: str("OTHER")}, now))
}

func TestValidateContent(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateNewContent("hello"))
	assert.Error(t, ValidateNewContent("   "))
	assert.NoError(t, ValidateContentLength(""))
	assert.Error(t, ValidateContentLength(strings.Repeat("c", MaxContentLen+1)))

	assert.NoError(t, ValidateTitle("A title"))
	assert.Error(t, ValidateTitle(" "))
	assert.Error(t, ValidateTitle(strings.Repeat("t", MaxTitleLen+1)))
}
