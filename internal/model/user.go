// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered account that can sign in and manage directory
// entries. Users are immutable after creation; there is no profile
// edit or account deletion in this API.
//
// PasswordHash holds the bcrypt hash of the user's password. The
// `json:"-"` tag keeps it out of every API response; it never leaves
// the auth layer. Accounts created through GitHub sign-in have an empty
// hash, which can never match a password, so password login for them
// always fails.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"` // unique across the store
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
