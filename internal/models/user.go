// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Roles granted to users and carried by access tokens.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Gender values accepted on profiles.
const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
)

// User is a registered identity. Username is immutable after registration.
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Username  string     `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email     string     `gorm:"uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	Role      string     `gorm:"size:20;not null;default:user" json:"role"`
	Bio       string     `gorm:"size:500" json:"bio"`
	AvatarURL string     `json:"avatar_url"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Gender    string     `gorm:"size:10" json:"gender,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Roles returns the role set granted to the user.
func (u *User) Roles() []string {
	if u.Role == "" {
		return []string{RoleUser}
	}
	return []string{u.Role}
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
