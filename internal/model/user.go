package model

import (
	"errors"
	"time"
)

// User represents a registered warbler account.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	Password       string    `db:"password" json:"-"` // bcrypt hash, never plaintext
	ImageURL       string    `db:"image_url" json:"image_url"`
	HeaderImageURL string    `db:"header_image_url" json:"header_image_url"`
	Bio            *string   `db:"bio" json:"bio"`
	Location       *string   `db:"location" json:"location"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// UserSummary is the slice of a user shown in lists and next to messages.
type UserSummary struct {
	ID       int64   `db:"id" json:"id"`
	Username string  `db:"username" json:"username"`
	ImageURL string  `db:"image_url" json:"image_url"`
	Bio      *string `db:"bio" json:"bio"`
}

// UserStats holds the counters displayed on a profile.
type UserStats struct {
	Messages  int `db:"messages"`
	Following int `db:"following"`
	Followers int `db:"followers"`
	Likes     int `db:"likes"`
}

// Profile is a user page: the user and their counters.
type Profile struct {
	User  *User
	Stats UserStats
}

// SignupInput is the data needed to create an account.
type SignupInput struct {
	Username string
	Password string
	Email    string
	ImageURL string
}

// ProfileUpdate carries the editable profile fields plus the current password
// used to re-authenticate.
type ProfileUpdate struct {
	Username        string
	Email           string
	ImageURL        string
	HeaderImageURL  string
	Bio             string
	Location        string
	CurrentPassword string
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned when a username is already registered
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken is returned when an email is already registered
	ErrEmailTaken = errors.New("email already taken")

	// ErrInvalidCredentials is returned when a re-authentication fails
	ErrInvalidCredentials = errors.New("invalid credentials")
)
