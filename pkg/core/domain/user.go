package domain

import "time"

// PrefAccentColor is the only preference key the server understands.
const PrefAccentColor = "accentColor"

// Preferences is the free-form per-user settings map, stored as JSON.
type Preferences map[string]any

type User struct {
	ID           int64       `json:"id"`
	Username     string      `json:"username" validate:"required"`
	PasswordHash string      `json:"-"`
	IsAdmin      bool        `json:"is_admin"`
	Preferences  Preferences `json:"preferences"`
	CreatedAt    time.Time   `json:"created_at"`
}

// UserPatch is an admin edit of another account.
type UserPatch struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	IsAdmin  *bool   `json:"is_admin"`
}

// Identity is the acting user resolved from a bearer token.
type Identity struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}
