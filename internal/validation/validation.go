// Package validation provides input validation utilities. Handlers run these
// checks before calling into services.
package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ChakCage/Borlas/internal/models"
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 30
	MinPasswordLen = 6
	// MaxPasswordBytes is bcrypt's input limit.
	MaxPasswordBytes = 72
	MaxBioLen        = 500
	MaxTitleLen      = 200
	MaxContentLen    = 10000
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// ValidateUsername checks length and the lowercase [a-z0-9_-] alphabet.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLen || n > MaxUsernameLen {
		return models.NewValidationError(
			fmt.Sprintf("username must be between %d and %d characters", MinUsernameLen, MaxUsernameLen))
	}
	if !usernamePattern.MatchString(username) {
		return models.NewValidationError("username may only contain lowercase letters, digits, '_' and '-'")
	}
	return nil
}

// ValidateEmail checks for a single bare address such as "alice@x.com".
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, "@") {
		return models.NewValidationError("email must be a valid address")
	}
	return nil
}

// ValidatePassword checks password length bounds.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return models.NewValidationError(
			fmt.Sprintf("password must be at least %d characters long", MinPasswordLen))
	}
	if len(password) > MaxPasswordBytes {
		return models.NewValidationError(
			fmt.Sprintf("password must not exceed %d bytes", MaxPasswordBytes))
	}
	return nil
}

// Profile holds the optional, editable profile fields.
type Profile struct {
	Bio       *string
	AvatarURL *string
	BirthDate *time.Time
	Gender    *string
}

// ValidateProfile checks each provided profile field. now bounds BirthDate.
func ValidateProfile(p Profile, now time.Time) error {
	if p.Bio != nil && utf8.RuneCountInString(*p.Bio) > MaxBioLen {
		return models.NewValidationError(fmt.Sprintf("bio must not exceed %d characters", MaxBioLen))
	}
	if p.AvatarURL != nil && *p.AvatarURL != "" {
		u, err := url.ParseRequestURI(*p.AvatarURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return models.NewValidationError("avatar_url must be an http(s) URL")
		}
	}
	if p.BirthDate != nil && !p.BirthDate.Before(now) {
		return models.NewValidationError("birth_date must be in the past")
	}
	if p.Gender != nil && *p.Gender != "" && *p.Gender != models.GenderMale && *p.Gender != models.GenderFemale {
		return models.NewValidationError("gender must be MALE or FEMALE")
	}
	return nil
}

// ValidateSignup runs the registration checks in order.
func ValidateSignup(username, email, password string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	return ValidatePassword(password)
}

// ValidateTitle requires a non-blank, bounded post title.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return models.NewValidationError("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return models.NewValidationError(fmt.Sprintf("title must not exceed %d characters", MaxTitleLen))
	}
	return nil
}

// ValidateNewContent requires non-blank content for creation.
func ValidateNewContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("content is required")
	}
	return ValidateContentLength(content)
}

// ValidateContentLength bounds content. Blank content is allowed here because
// a blank update means delete.
func ValidateContentLength(content string) error {
	if utf8.RuneCountInString(content) > MaxContentLen {
		return models.NewValidationError(fmt.Sprintf("content must not exceed %d characters", MaxContentLen))
	}
	return nil
}
